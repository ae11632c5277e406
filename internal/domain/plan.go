package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RiskLevel represents the risk tolerance a user picks for a plan
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "Low"
	RiskLevelMedium RiskLevel = "Medium"
	RiskLevelHigh   RiskLevel = "High"
)

// DefaultPlanName is used when a plan is created without a name
const DefaultPlanName = "My Investment Plan"

// MaxPlanNameLength bounds the display name stored on a plan
const MaxPlanNameLength = 100

// MaxMonthlyIncome is the largest monthly income a plan accepts
const MaxMonthlyIncome = 1e12

// RiskLevels lists every accepted risk level in ascending order
var RiskLevels = []RiskLevel{RiskLevelLow, RiskLevelMedium, RiskLevelHigh}

// ParseRiskLevel converts user input into a RiskLevel.
// Matching is case-insensitive ("low" -> Low). An empty string yields Medium.
// Returns false when the input is not one of the three levels.
func ParseRiskLevel(raw string) (RiskLevel, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RiskLevelMedium, true
	}
	for _, level := range RiskLevels {
		if strings.EqualFold(raw, string(level)) {
			return level, true
		}
	}
	return "", false
}

// Valid reports whether r is one of the enumerated risk levels
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh:
		return true
	}
	return false
}

// BucketShare is the slice of monthly income assigned to one allocation bucket
type BucketShare struct {
	Percentage float64 `json:"percentage"`
	Amount     float64 `json:"amount"`
}

// Allocation splits monthly income across the three fixed buckets.
// The three percentages sum to 100 and every Amount equals income * Percentage / 100.
type Allocation struct {
	SIPs           BucketShare `json:"sips"`
	Cryptocurrency BucketShare `json:"cryptocurrency"`
	Gold           BucketShare `json:"gold"`
}

// TotalPercentage returns the sum of the three bucket percentages
func (a Allocation) TotalPercentage() float64 {
	return a.SIPs.Percentage + a.Cryptocurrency.Percentage + a.Gold.Percentage
}

// WithAmounts returns a copy of a whose amounts are recomputed from the percentages.
// The percentage is scaled first so a finite income never overflows.
func (a Allocation) WithAmounts(monthlyIncome float64) Allocation {
	a.SIPs.Amount = monthlyIncome * (a.SIPs.Percentage / 100)
	a.Cryptocurrency.Amount = monthlyIncome * (a.Cryptocurrency.Percentage / 100)
	a.Gold.Amount = monthlyIncome * (a.Gold.Percentage / 100)
	return a
}

// Finite reports whether every percentage and amount is a finite number
func (a Allocation) Finite() bool {
	for _, b := range []BucketShare{a.SIPs, a.Cryptocurrency, a.Gold} {
		if !isFinite(b.Percentage) || !isFinite(b.Amount) {
			return false
		}
	}
	return true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Recommendations holds the per-bucket advice text
type Recommendations struct {
	SIPs           string `json:"sips"`
	Cryptocurrency string `json:"cryptocurrency"`
	Gold           string `json:"gold"`
}

// Complete reports whether all three advice texts are present
func (r Recommendations) Complete() bool {
	return strings.TrimSpace(r.SIPs) != "" &&
		strings.TrimSpace(r.Cryptocurrency) != "" &&
		strings.TrimSpace(r.Gold) != ""
}

// InvestmentPlan is the only persisted entity.
// After creation only IsShared and ShareLink are ever written.
type InvestmentPlan struct {
	ID              uuid.UUID
	OwnerID         string
	PlanName        string
	MonthlyIncome   float64
	RiskLevel       RiskLevel
	Allocation      Allocation
	Recommendations *Recommendations
	Summary         string
	CreatedAt       time.Time
	IsShared        bool
	ShareLink       *string // nil unless IsShared
}

// Validate ensures the plan adheres to domain rules before it is persisted
func (p *InvestmentPlan) Validate() error {
	verr := &ValidationError{}
	if p.OwnerID == "" {
		verr.Add("ownerId", "owner is required")
	}
	switch {
	case !isFinite(p.MonthlyIncome):
		verr.Add("monthlyIncome", "monthly income must be a number")
	case p.MonthlyIncome <= 0:
		verr.Add("monthlyIncome", "monthly income must be positive")
	case p.MonthlyIncome > MaxMonthlyIncome:
		verr.Add("monthlyIncome", fmt.Sprintf("monthly income must be at most %.0f", MaxMonthlyIncome))
	}
	if !p.Allocation.Finite() {
		verr.Add("allocation", "allocation amounts must be finite")
	}
	if !p.RiskLevel.Valid() {
		verr.Add("riskLevel", "risk level must be one of Low, Medium, High")
	}
	if strings.TrimSpace(p.Summary) == "" {
		verr.Add("summary", "summary cannot be empty")
	}
	if p.IsShared != (p.ShareLink != nil) {
		verr.Add("shareLink", "share link must be set exactly when the plan is shared")
	}
	return verr.OrNil()
}
