package allocator

import (
	"errors"

	"github.com/simaogato/planwise-backend/internal/domain"
)

// tier is one row of the fixed allocation table
type tier struct {
	sips, crypto, gold float64
	advice             domain.Recommendations
	summary            string
}

// tiers maps each risk level to its fixed split (percent of monthly income)
var tiers = map[domain.RiskLevel]tier{
	domain.RiskLevelLow: {
		sips: 60, crypto: 10, gold: 30,
		advice: domain.Recommendations{
			SIPs:           "Put the largest share into diversified index or large-cap SIPs for steady, compounding growth.",
			Cryptocurrency: "Keep crypto exposure small and limited to established coins; treat it as optional upside.",
			Gold:           "Hold a meaningful gold position as a hedge against inflation and market drawdowns.",
		},
		summary: "A conservative plan that favours stability. Most of your income goes into SIPs for disciplined long-term growth, " +
			"gold cushions against inflation and market shocks, and only a small slice is exposed to volatile cryptocurrency.",
	},
	domain.RiskLevelMedium: {
		sips: 50, crypto: 30, gold: 20,
		advice: domain.Recommendations{
			SIPs:           "Anchor the plan with a mix of large and mid-cap SIPs to balance growth and stability.",
			Cryptocurrency: "Allocate a moderate amount to major cryptocurrencies and rebalance when prices swing sharply.",
			Gold:           "Use gold as a stabiliser that offsets volatility elsewhere in the portfolio.",
		},
		summary: "A balanced plan that trades some stability for growth. Half of your income builds a SIP core, " +
			"a moderate cryptocurrency allocation adds upside, and gold keeps overall volatility in check.",
	},
	domain.RiskLevelHigh: {
		sips: 40, crypto: 50, gold: 10,
		advice: domain.Recommendations{
			SIPs:           "Favour mid and small-cap SIPs for higher growth while keeping a diversified base.",
			Cryptocurrency: "Take a large cryptocurrency position for growth, but only with money you can leave invested through deep swings.",
			Gold:           "Keep a small gold allocation as a minimal safety net.",
		},
		summary: "An aggressive plan that prioritises growth over stability. Half of your income targets high-return cryptocurrency, " +
			"SIPs provide a diversified growth base, and a small gold holding offers a minimal safety net.",
	},
}

// Compute returns the rule-based allocation for a monthly income and risk level.
// Logic:
//  1. Look up the fixed percentage row for the risk level
//  2. amount = monthlyIncome * (percentage / 100) for every bucket (no rounding)
//  3. Attach the static advice and summary for the tier
//
// Compute is pure and deterministic; it only fails on invalid input.
func Compute(monthlyIncome float64, riskLevel domain.RiskLevel) (domain.AllocationResult, error) {
	if !(monthlyIncome > 0) {
		return domain.AllocationResult{}, errors.New("monthly income must be positive")
	}

	t, ok := tiers[riskLevel]
	if !ok {
		return domain.AllocationResult{}, errors.New("invalid risk level")
	}

	allocation := domain.Allocation{
		SIPs:           domain.BucketShare{Percentage: t.sips},
		Cryptocurrency: domain.BucketShare{Percentage: t.crypto},
		Gold:           domain.BucketShare{Percentage: t.gold},
	}.WithAmounts(monthlyIncome)

	advice := t.advice
	return domain.AllocationResult{
		Allocation:      allocation,
		Recommendations: &advice,
		Summary:         t.summary,
		Source:          domain.AllocationSourceRules,
	}, nil
}
