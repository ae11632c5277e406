package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simaogato/planwise-backend/internal/domain"
)

// planRepository implements domain.PlanRepository
type planRepository struct {
	db *DB
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *DB) domain.PlanRepository {
	return &planRepository{db: db}
}

// Create inserts a new plan
func (r *planRepository) Create(ctx context.Context, plan *domain.InvestmentPlan) error {
	rec, err := newPlanRecord(plan)
	if err != nil {
		return domain.NewStorageError("create plan", err)
	}

	if err := r.db.Gorm.WithContext(ctx).Create(rec).Error; err != nil {
		return domain.NewStorageError("create plan", err)
	}
	return nil
}

// ListByOwner returns the owner's plans ordered newest first
func (r *planRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.InvestmentPlan, error) {
	var recs []planRecord
	err := r.db.Gorm.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Order("id").
		Find(&recs).Error
	if err != nil {
		return nil, domain.NewStorageError("list plans", err)
	}

	plans := make([]*domain.InvestmentPlan, 0, len(recs))
	for i := range recs {
		plan, err := recs[i].toDomain()
		if err != nil {
			return nil, domain.NewStorageError("list plans", err)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// GetByIDAndOwner retrieves a plan owned by ownerID
func (r *planRepository) GetByIDAndOwner(ctx context.Context, id uuid.UUID, ownerID string) (*domain.InvestmentPlan, error) {
	return r.first(ctx, "get plan", "id = ? AND owner_id = ?", id, ownerID)
}

// GetShared retrieves a plan only if it is currently shared
func (r *planRepository) GetShared(ctx context.Context, id uuid.UUID) (*domain.InvestmentPlan, error) {
	return r.first(ctx, "get shared plan", "id = ? AND is_shared = ?", id, true)
}

// DeleteByIDAndOwner removes a plan owned by ownerID
func (r *planRepository) DeleteByIDAndOwner(ctx context.Context, id uuid.UUID, ownerID string) error {
	result := r.db.Gorm.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&planRecord{})
	if result.Error != nil {
		return domain.NewStorageError("delete plan", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrPlanNotFound
	}
	return nil
}

// ToggleShare flips is_shared and sets or clears share_link in one UPDATE ... RETURNING.
// The CASE reads the pre-update is_shared, so the link always matches the new flag.
func (r *planRepository) ToggleShare(ctx context.Context, id uuid.UUID, ownerID string, sharedLink string) (*domain.InvestmentPlan, error) {
	var rec planRecord
	result := r.db.Gorm.WithContext(ctx).
		Model(&rec).
		Clauses(clause.Returning{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(map[string]any{
			"is_shared":  gorm.Expr("NOT is_shared"),
			"share_link": gorm.Expr("CASE WHEN is_shared THEN NULL ELSE ? END", sharedLink),
		})
	if result.Error != nil {
		return nil, domain.NewStorageError("toggle share", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrPlanNotFound
	}

	plan, err := rec.toDomain()
	if err != nil {
		return nil, domain.NewStorageError("toggle share", err)
	}
	return plan, nil
}

func (r *planRepository) first(ctx context.Context, op string, query string, args ...any) (*domain.InvestmentPlan, error) {
	var rec planRecord
	err := r.db.Gorm.WithContext(ctx).Where(query, args...).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, domain.NewStorageError(op, err)
	}

	plan, err := rec.toDomain()
	if err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	return plan, nil
}
