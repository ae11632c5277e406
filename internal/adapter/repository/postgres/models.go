package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/simaogato/planwise-backend/internal/domain"
)

// planRecord is the investment_plans row
type planRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;index:idx_investment_plans_id_shared,priority:1"`
	OwnerID       string    `gorm:"type:varchar(64);not null;index"`
	PlanName      string    `gorm:"type:varchar(100);not null"`
	MonthlyIncome float64   `gorm:"type:double precision;not null"`
	RiskLevel     string    `gorm:"type:varchar(8);not null"`

	SIPsPercentage   float64 `gorm:"column:allocation_sips_percentage;type:double precision;not null"`
	SIPsAmount       float64 `gorm:"column:allocation_sips_amount;type:double precision;not null"`
	CryptoPercentage float64 `gorm:"column:allocation_crypto_percentage;type:double precision;not null"`
	CryptoAmount     float64 `gorm:"column:allocation_crypto_amount;type:double precision;not null"`
	GoldPercentage   float64 `gorm:"column:allocation_gold_percentage;type:double precision;not null"`
	GoldAmount       float64 `gorm:"column:allocation_gold_amount;type:double precision;not null"`

	Recommendations datatypes.JSON `gorm:"type:jsonb"`
	Summary         string         `gorm:"type:text;not null"`
	CreatedAt       time.Time      `gorm:"type:timestamptz;not null;index"`
	IsShared        bool           `gorm:"not null;default:false;index:idx_investment_plans_id_shared,priority:2"`
	ShareLink       *string        `gorm:"type:text"`
}

func (planRecord) TableName() string {
	return "investment_plans"
}

func newPlanRecord(p *domain.InvestmentPlan) (*planRecord, error) {
	rec := &planRecord{
		ID:               p.ID,
		OwnerID:          p.OwnerID,
		PlanName:         p.PlanName,
		MonthlyIncome:    p.MonthlyIncome,
		RiskLevel:        string(p.RiskLevel),
		SIPsPercentage:   p.Allocation.SIPs.Percentage,
		SIPsAmount:       p.Allocation.SIPs.Amount,
		CryptoPercentage: p.Allocation.Cryptocurrency.Percentage,
		CryptoAmount:     p.Allocation.Cryptocurrency.Amount,
		GoldPercentage:   p.Allocation.Gold.Percentage,
		GoldAmount:       p.Allocation.Gold.Amount,
		Summary:          p.Summary,
		CreatedAt:        p.CreatedAt,
		IsShared:         p.IsShared,
		ShareLink:        p.ShareLink,
	}
	if p.Recommendations != nil {
		b, err := json.Marshal(p.Recommendations)
		if err != nil {
			return nil, fmt.Errorf("failed to encode recommendations: %w", err)
		}
		rec.Recommendations = datatypes.JSON(b)
	}
	return rec, nil
}

func (r *planRecord) toDomain() (*domain.InvestmentPlan, error) {
	plan := &domain.InvestmentPlan{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		PlanName:      r.PlanName,
		MonthlyIncome: r.MonthlyIncome,
		RiskLevel:     domain.RiskLevel(r.RiskLevel),
		Allocation: domain.Allocation{
			SIPs:           domain.BucketShare{Percentage: r.SIPsPercentage, Amount: r.SIPsAmount},
			Cryptocurrency: domain.BucketShare{Percentage: r.CryptoPercentage, Amount: r.CryptoAmount},
			Gold:           domain.BucketShare{Percentage: r.GoldPercentage, Amount: r.GoldAmount},
		},
		Summary:   r.Summary,
		CreatedAt: r.CreatedAt.UTC(),
		IsShared:  r.IsShared,
		ShareLink: r.ShareLink,
	}
	if len(r.Recommendations) > 0 && string(r.Recommendations) != "null" {
		var recs domain.Recommendations
		if err := json.Unmarshal(r.Recommendations, &recs); err != nil {
			return nil, fmt.Errorf("failed to decode recommendations: %w", err)
		}
		plan.Recommendations = &recs
	}
	return plan, nil
}

// legacyPlanRecord is a row of the legacy_investment_plans table left behind by the previous schema
type legacyPlanRecord struct {
	ID            uuid.UUID                             `gorm:"type:uuid;primaryKey"`
	User          string                                `gorm:"column:user_id;type:varchar(64)"`
	MonthlyIncome float64                               `gorm:"type:double precision"`
	RiskLevel     string                                `gorm:"type:varchar(16)"`
	Allocation    datatypes.JSONType[domain.Allocation] `gorm:"type:jsonb"`
	Summary       string                                `gorm:"type:text"`
	CreatedAt     time.Time                             `gorm:"type:timestamptz"`
	IsShared      bool
	ShareLink     *string `gorm:"type:text"`
}

func (legacyPlanRecord) TableName() string {
	return "legacy_investment_plans"
}

func (r *legacyPlanRecord) toDomain() domain.LegacyPlan {
	return domain.LegacyPlan{
		ID:            r.ID,
		User:          r.User,
		MonthlyIncome: r.MonthlyIncome,
		RiskLevel:     r.RiskLevel,
		Allocation:    r.Allocation.Data(),
		Summary:       r.Summary,
		CreatedAt:     r.CreatedAt.UTC(),
		IsShared:      r.IsShared,
		ShareLink:     r.ShareLink,
	}
}
