package domain

import (
	"context"

	"github.com/google/uuid"
)

// PlanRepository defines the interface for investment plan persistence operations.
// Every lookup that takes an ownerID returns ErrPlanNotFound when the plan is absent
// or owned by someone else.
type PlanRepository interface {
	// Create inserts a new plan
	Create(ctx context.Context, plan *InvestmentPlan) error

	// ListByOwner returns the owner's plans ordered newest first
	ListByOwner(ctx context.Context, ownerID string) ([]*InvestmentPlan, error)

	// GetByIDAndOwner retrieves a plan owned by ownerID
	GetByIDAndOwner(ctx context.Context, id uuid.UUID, ownerID string) (*InvestmentPlan, error)

	// GetShared retrieves a plan only if it is currently shared
	GetShared(ctx context.Context, id uuid.UUID) (*InvestmentPlan, error)

	// DeleteByIDAndOwner removes a plan owned by ownerID
	DeleteByIDAndOwner(ctx context.Context, id uuid.UUID, ownerID string) error

	// ToggleShare atomically flips IsShared on a plan owned by ownerID.
	// When the flag becomes true ShareLink is set to sharedLink, otherwise it is cleared.
	// Returns the updated plan.
	ToggleShare(ctx context.Context, id uuid.UUID, ownerID string, sharedLink string) (*InvestmentPlan, error)
}

// PlanCache is a read-through cache for publicly shared plans
type PlanCache interface {
	GetPlan(ctx context.Context, id uuid.UUID) (*InvestmentPlan, bool, error)

	// SetPlan fills the entry only when the key is empty.
	// It never replaces a cached plan or a pending invalidation.
	SetPlan(ctx context.Context, plan *InvestmentPlan) error

	// DeletePlan invalidates the entry and blocks fills for a while,
	// so a reader that loaded the plan before the invalidation cannot re-cache it.
	DeletePlan(ctx context.Context, id uuid.UUID) error
}

// LegacyPlanSource lists legacy plans that have not been migrated yet
type LegacyPlanSource interface {
	ListPending(ctx context.Context) ([]LegacyPlan, error)
}
