package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/simaogato/planwise-backend/internal/domain"
)

const sharedPlanKeyPrefix = "shared-plan:"

// tombstone marks a recently invalidated plan. A JSON plan never starts with '-'.
var tombstone = []byte("-")

// planCache implements domain.PlanCache over a Store.
// Fills use SetNX and invalidations leave a tombstone for one ttl, so a fill
// racing an unshare or delete lands on the tombstone and is dropped.
type planCache struct {
	store Store
	ttl   time.Duration
}

// NewPlanCache creates a shared-plan cache whose entries expire after ttl
func NewPlanCache(store Store, ttl time.Duration) domain.PlanCache {
	return &planCache{store: store, ttl: ttl}
}

// GetPlan returns the cached plan. Tombstones and undecodable entries are misses.
func (c *planCache) GetPlan(ctx context.Context, id uuid.UUID) (*domain.InvestmentPlan, bool, error) {
	b, found, err := c.store.Get(ctx, sharedPlanKey(id))
	if err != nil || !found {
		return nil, false, err
	}
	if bytes.Equal(b, tombstone) {
		return nil, false, nil
	}

	var plan domain.InvestmentPlan
	if err := json.Unmarshal(b, &plan); err != nil {
		_ = c.store.Delete(ctx, sharedPlanKey(id))
		return nil, false, nil
	}
	return &plan, true, nil
}

func (c *planCache) SetPlan(ctx context.Context, plan *domain.InvestmentPlan) error {
	b, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	_, err = c.store.SetNX(ctx, sharedPlanKey(plan.ID), b, c.ttl)
	return err
}

func (c *planCache) DeletePlan(ctx context.Context, id uuid.UUID) error {
	return c.store.Set(ctx, sharedPlanKey(id), tombstone, c.ttl)
}

func sharedPlanKey(id uuid.UUID) string {
	return sharedPlanKeyPrefix + id.String()
}
