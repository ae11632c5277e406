package rest

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/planwise-backend/internal/domain"
)

type bucketResponse struct {
	Percentage float64 `json:"percentage"`
	Amount     float64 `json:"amount"`
}

type allocationResponse struct {
	SIPs           bucketResponse `json:"sips"`
	Cryptocurrency bucketResponse `json:"cryptocurrency"`
	Gold           bucketResponse `json:"gold"`
}

type planResponse struct {
	ID              string                  `json:"id"`
	OwnerID         string                  `json:"ownerId,omitempty"`
	PlanName        string                  `json:"planName"`
	MonthlyIncome   float64                 `json:"monthlyIncome"`
	RiskLevel       domain.RiskLevel        `json:"riskLevel"`
	Allocation      allocationResponse      `json:"allocation"`
	Recommendations *domain.Recommendations `json:"recommendations,omitempty"`
	Summary         string                  `json:"summary"`
	CreatedAt       time.Time               `json:"createdAt"`
	IsShared        bool                    `json:"isShared"`
	ShareLink       *string                 `json:"shareLink"`
}

// newPlanResponse renders a plan for its owner
func newPlanResponse(p *domain.InvestmentPlan) planResponse {
	return planResponse{
		ID:              p.ID.String(),
		OwnerID:         p.OwnerID,
		PlanName:        p.PlanName,
		MonthlyIncome:   roundMoney(p.MonthlyIncome),
		RiskLevel:       p.RiskLevel,
		Allocation:      newAllocationResponse(p.Allocation),
		Recommendations: p.Recommendations,
		Summary:         p.Summary,
		CreatedAt:       p.CreatedAt,
		IsShared:        p.IsShared,
		ShareLink:       p.ShareLink,
	}
}

// newSharedPlanResponse renders a plan for anonymous viewers; the owner is not disclosed
func newSharedPlanResponse(p *domain.InvestmentPlan) planResponse {
	resp := newPlanResponse(p)
	resp.OwnerID = ""
	return resp
}

func newPlanListResponse(plans []*domain.InvestmentPlan) []planResponse {
	out := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, newPlanResponse(p))
	}
	return out
}

func newAllocationResponse(a domain.Allocation) allocationResponse {
	return allocationResponse{
		SIPs:           newBucketResponse(a.SIPs),
		Cryptocurrency: newBucketResponse(a.Cryptocurrency),
		Gold:           newBucketResponse(a.Gold),
	}
}

func newBucketResponse(b domain.BucketShare) bucketResponse {
	return bucketResponse{
		Percentage: roundMoney(b.Percentage),
		Amount:     roundMoney(b.Amount),
	}
}

// roundMoney rounds half away from zero to two decimal places.
// Non-finite values render as 0.
func roundMoney(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
