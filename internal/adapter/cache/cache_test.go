package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/planwise-backend/internal/domain"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
	got, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), got)

	got[0] = 'x'
	again, _, _ := s.Get(ctx, "k")
	assert.Equal(t, []byte("v"), again, "stored value must not alias the returned slice")

	require.NoError(t, s.Delete(ctx, "k"))
	_, found, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.clock = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))

	_, found, _ := s.Get(ctx, "k")
	assert.True(t, found)

	now = now.Add(2 * time.Minute)
	_, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_SetNX(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.clock = func() time.Time { return now }

	wrote, err := s.SetNX(ctx, "k", []byte("first"), time.Minute)
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = s.SetNX(ctx, "k", []byte("second"), time.Minute)
	require.NoError(t, err)
	assert.False(t, wrote)
	got, _, _ := s.Get(ctx, "k")
	assert.Equal(t, []byte("first"), got)

	now = now.Add(2 * time.Minute)
	wrote, err = s.SetNX(ctx, "k", []byte("third"), time.Minute)
	require.NoError(t, err)
	assert.True(t, wrote, "an expired entry does not block the write")
	got, _, _ = s.Get(ctx, "k")
	assert.Equal(t, []byte("third"), got)
}

func TestMemoryStore_SweepsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.clock = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "short", []byte("v"), time.Second))
	require.NoError(t, s.Set(ctx, "forever", []byte("v"), 0))
	now = now.Add(time.Minute)

	for i := 0; i < sweepEvery; i++ {
		require.NoError(t, s.Set(ctx, "forever", []byte("v"), 0))
	}

	s.mu.Lock()
	_, short := s.entries["short"]
	_, forever := s.entries["forever"]
	s.mu.Unlock()
	assert.False(t, short)
	assert.True(t, forever)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemoryStore()

	_, _, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Set(ctx, "k", nil, 0), context.Canceled)
	_, err = s.SetNX(ctx, "k", nil, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlanCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := NewPlanCache(store, time.Minute)

	link := "https://planwise.example.com/shared-plan/x"
	plan := &domain.InvestmentPlan{
		ID:            uuid.New(),
		OwnerID:       "owner-a",
		PlanName:      domain.DefaultPlanName,
		MonthlyIncome: 1000,
		RiskLevel:     domain.RiskLevelHigh,
		Allocation: domain.Allocation{
			SIPs:           domain.BucketShare{Percentage: 40, Amount: 400},
			Cryptocurrency: domain.BucketShare{Percentage: 50, Amount: 500},
			Gold:           domain.BucketShare{Percentage: 10, Amount: 100},
		},
		Summary:   "summary",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		IsShared:  true,
		ShareLink: &link,
	}

	_, found, err := c.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SetPlan(ctx, plan))
	raw, found, _ := store.Get(ctx, "shared-plan:"+plan.ID.String())
	require.True(t, found)
	assert.NotEmpty(t, raw)

	got, found, err := c.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, plan.ID, got.ID)
	assert.Equal(t, plan.Allocation, got.Allocation)
	assert.Nil(t, got.Recommendations)
	assert.True(t, plan.CreatedAt.Equal(got.CreatedAt))
	require.NotNil(t, got.ShareLink)
	assert.Equal(t, link, *got.ShareLink)

	require.NoError(t, c.DeletePlan(ctx, plan.ID))
	_, found, err = c.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPlanCache_CorruptEntryIsAMiss(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := NewPlanCache(store, time.Minute)
	id := uuid.New()

	require.NoError(t, store.Set(ctx, sharedPlanKey(id), []byte("{not json"), 0))

	_, found, err := c.GetPlan(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)

	_, stillThere, _ := store.Get(ctx, sharedPlanKey(id))
	assert.False(t, stillThere)
}

func TestPlanCache_InvalidationBlocksStaleFill(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.clock = func() time.Time { return now }
	c := NewPlanCache(store, time.Minute)

	link := "https://planwise.example.com/shared-plan/x"
	stale := &domain.InvestmentPlan{ID: uuid.New(), OwnerID: "owner-a", IsShared: true, ShareLink: &link}

	require.NoError(t, c.DeletePlan(ctx, stale.ID))
	require.NoError(t, c.SetPlan(ctx, stale))

	_, found, err := c.GetPlan(ctx, stale.ID)
	require.NoError(t, err)
	assert.False(t, found, "a fill after invalidation must not be served")

	now = now.Add(2 * time.Minute)
	require.NoError(t, c.SetPlan(ctx, stale))
	_, found, err = c.GetPlan(ctx, stale.ID)
	require.NoError(t, err)
	assert.True(t, found, "fills resume once the tombstone expires")
}

func TestPlanCache_FillDoesNotReplaceEntry(t *testing.T) {
	ctx := context.Background()
	c := NewPlanCache(NewMemoryStore(), time.Minute)
	id := uuid.New()

	require.NoError(t, c.SetPlan(ctx, &domain.InvestmentPlan{ID: id, Summary: "first"}))
	require.NoError(t, c.SetPlan(ctx, &domain.InvestmentPlan{ID: id, Summary: "second"}))

	got, found, err := c.GetPlan(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "first", got.Summary)
}
