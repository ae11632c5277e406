package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LegacyPlan is the older plan shape, keyed by User and without a PlanName.
// It is only read by the legacy migration and is never served.
type LegacyPlan struct {
	ID            uuid.UUID
	User          string
	MonthlyIncome float64
	RiskLevel     string
	Allocation    Allocation
	Summary       string
	CreatedAt     time.Time
	IsShared      bool
	ShareLink     *string
}

// Migrate converts a legacy record into the canonical InvestmentPlan.
// Logic:
//   - User becomes OwnerID, PlanName takes the default
//   - Unknown or empty risk levels default to Medium, as the legacy schema did
//   - Amounts are recomputed from the stored percentages
//   - A plan that is not shared loses any stale share link
func (l *LegacyPlan) Migrate() (*InvestmentPlan, error) {
	if l.User == "" {
		return nil, errors.New("legacy plan has no user")
	}
	if l.Allocation.TotalPercentage() == 0 {
		return nil, errors.New("legacy plan has no allocation")
	}

	risk, ok := ParseRiskLevel(l.RiskLevel)
	if !ok {
		risk = RiskLevelMedium
	}

	summary := strings.TrimSpace(l.Summary)
	if summary == "" {
		summary = "Imported plan."
	}

	createdAt := l.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	plan := &InvestmentPlan{
		ID:            l.ID,
		OwnerID:       l.User,
		PlanName:      DefaultPlanName,
		MonthlyIncome: l.MonthlyIncome,
		RiskLevel:     risk,
		Allocation:    l.Allocation.WithAmounts(l.MonthlyIncome),
		Summary:       summary,
		CreatedAt:     createdAt,
		IsShared:      l.IsShared && l.ShareLink != nil,
	}
	if plan.IsShared {
		plan.ShareLink = l.ShareLink
	}
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}
