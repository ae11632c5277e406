package postgres

import (
	"context"
	"fmt"

	"github.com/simaogato/planwise-backend/internal/domain"
)

// AutoMigrate creates or updates the investment_plans table and its indexes
func AutoMigrate(ctx context.Context, db *DB) error {
	if db == nil || db.Gorm == nil {
		return fmt.Errorf("database is not configured")
	}
	if err := db.Gorm.WithContext(ctx).AutoMigrate(&planRecord{}); err != nil {
		return fmt.Errorf("failed to migrate investment_plans: %w", err)
	}
	return nil
}

// legacyPlanSource reads legacy_investment_plans rows that have not been imported yet
type legacyPlanSource struct {
	db *DB
}

// NewLegacyPlanSource creates a reader over the legacy plan table
func NewLegacyPlanSource(db *DB) domain.LegacyPlanSource {
	return &legacyPlanSource{db: db}
}

// ListPending returns legacy plans whose id is not yet present in investment_plans.
// Rows without an allocation document are skipped.
func (s *legacyPlanSource) ListPending(ctx context.Context) ([]domain.LegacyPlan, error) {
	if !s.db.Gorm.WithContext(ctx).Migrator().HasTable(&legacyPlanRecord{}) {
		return []domain.LegacyPlan{}, nil
	}

	var recs []legacyPlanRecord
	err := s.db.Gorm.WithContext(ctx).
		Where("allocation IS NOT NULL").
		Where("NOT EXISTS (SELECT 1 FROM investment_plans p WHERE p.id = legacy_investment_plans.id)").
		Order("created_at").
		Find(&recs).Error
	if err != nil {
		return nil, domain.NewStorageError("list legacy plans", err)
	}

	plans := make([]domain.LegacyPlan, 0, len(recs))
	for i := range recs {
		plans = append(plans, recs[i].toDomain())
	}
	return plans, nil
}
