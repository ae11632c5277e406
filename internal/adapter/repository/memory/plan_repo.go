package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/simaogato/planwise-backend/internal/domain"
)

// planRepository implements domain.PlanRepository in process memory.
// Used when no database is configured and in tests.
type planRepository struct {
	mu    sync.RWMutex
	plans map[uuid.UUID]*domain.InvestmentPlan
}

// NewPlanRepository creates an empty in-memory plan repository
func NewPlanRepository() domain.PlanRepository {
	return &planRepository{plans: make(map[uuid.UUID]*domain.InvestmentPlan)}
}

// Create inserts a copy of plan
func (r *planRepository) Create(ctx context.Context, plan *domain.InvestmentPlan) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStorageError("create plan", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plans[plan.ID]; exists {
		return domain.NewStorageError("create plan", errDuplicateID)
	}
	r.plans[plan.ID] = clonePlan(plan)
	return nil
}

// ListByOwner returns the owner's plans ordered newest first
func (r *planRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.InvestmentPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStorageError("list plans", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	plans := make([]*domain.InvestmentPlan, 0)
	for _, p := range r.plans {
		if p.OwnerID == ownerID {
			plans = append(plans, clonePlan(p))
		}
	}
	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].CreatedAt.After(plans[j].CreatedAt)
	})
	return plans, nil
}

// GetByIDAndOwner retrieves a plan owned by ownerID
func (r *planRepository) GetByIDAndOwner(ctx context.Context, id uuid.UUID, ownerID string) (*domain.InvestmentPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStorageError("get plan", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plans[id]
	if !ok || p.OwnerID != ownerID {
		return nil, domain.ErrPlanNotFound
	}
	return clonePlan(p), nil
}

// GetShared retrieves a plan only if it is currently shared
func (r *planRepository) GetShared(ctx context.Context, id uuid.UUID) (*domain.InvestmentPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStorageError("get shared plan", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plans[id]
	if !ok || !p.IsShared {
		return nil, domain.ErrPlanNotFound
	}
	return clonePlan(p), nil
}

// DeleteByIDAndOwner removes a plan owned by ownerID
func (r *planRepository) DeleteByIDAndOwner(ctx context.Context, id uuid.UUID, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStorageError("delete plan", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.plans[id]
	if !ok || p.OwnerID != ownerID {
		return domain.ErrPlanNotFound
	}
	delete(r.plans, id)
	return nil
}

// ToggleShare flips IsShared under the write lock so concurrent toggles serialize
func (r *planRepository) ToggleShare(ctx context.Context, id uuid.UUID, ownerID string, sharedLink string) (*domain.InvestmentPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStorageError("toggle share", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.plans[id]
	if !ok || p.OwnerID != ownerID {
		return nil, domain.ErrPlanNotFound
	}

	p.IsShared = !p.IsShared
	if p.IsShared {
		link := sharedLink
		p.ShareLink = &link
	} else {
		p.ShareLink = nil
	}
	return clonePlan(p), nil
}

// clonePlan deep-copies a plan so callers never alias stored state
func clonePlan(p *domain.InvestmentPlan) *domain.InvestmentPlan {
	c := *p
	if p.Recommendations != nil {
		recs := *p.Recommendations
		c.Recommendations = &recs
	}
	if p.ShareLink != nil {
		link := *p.ShareLink
		c.ShareLink = &link
	}
	return &c
}
