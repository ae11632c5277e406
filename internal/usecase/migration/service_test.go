package migration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/planwise-backend/internal/adapter/repository/memory"
	"github.com/simaogato/planwise-backend/internal/domain"
	"github.com/simaogato/planwise-backend/internal/usecase/sharelink"
)

// MockLegacyPlanSource is a mock implementation of domain.LegacyPlanSource
type MockLegacyPlanSource struct {
	mock.Mock
}

func (m *MockLegacyPlanSource) ListPending(ctx context.Context) ([]domain.LegacyPlan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LegacyPlan), args.Error(1)
}

func legacyAllocation() domain.Allocation {
	return domain.Allocation{
		SIPs:           domain.BucketShare{Percentage: 50},
		Cryptocurrency: domain.BucketShare{Percentage: 30},
		Gold:           domain.BucketShare{Percentage: 20},
	}
}

func TestLegacyMigrator_Run(t *testing.T) {
	ctx := context.Background()
	staleLink := "https://old.example.com/shared-plan/abc"

	shared := domain.LegacyPlan{
		ID:            uuid.New(),
		User:          "owner-a",
		MonthlyIncome: 2000,
		RiskLevel:     "medium",
		Allocation:    legacyAllocation(),
		Summary:       "old summary",
		CreatedAt:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		IsShared:      true,
		ShareLink:     &staleLink,
	}
	private := domain.LegacyPlan{
		ID:            uuid.New(),
		User:          "owner-a",
		MonthlyIncome: 1000,
		Allocation:    legacyAllocation(),
	}
	orphan := domain.LegacyPlan{ID: uuid.New(), MonthlyIncome: 1000, Allocation: legacyAllocation()}

	source := new(MockLegacyPlanSource)
	source.On("ListPending", ctx).Return([]domain.LegacyPlan{shared, private, orphan}, nil)

	repo := memory.NewPlanRepository()
	policy := sharelink.NewPolicy("https://planwise.example.com")
	migrator := NewLegacyMigrator(source, repo, policy, nil)

	report, err := migrator.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{Imported: 2, Skipped: 1}, report)

	got, err := repo.GetByIDAndOwner(ctx, shared.ID, "owner-a")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPlanName, got.PlanName)
	assert.Equal(t, domain.RiskLevelMedium, got.RiskLevel)
	assert.InDelta(t, 1000.0, got.Allocation.SIPs.Amount, 1e-9)
	require.NotNil(t, got.ShareLink)
	assert.Equal(t, "https://planwise.example.com/shared-plan/"+shared.ID.String(), *got.ShareLink)

	other, err := repo.GetByIDAndOwner(ctx, private.ID, "owner-a")
	require.NoError(t, err)
	assert.False(t, other.IsShared)
	assert.Nil(t, other.ShareLink)

	source.AssertExpectations(t)
}

func TestLegacyMigrator_SourceError(t *testing.T) {
	ctx := context.Background()
	source := new(MockLegacyPlanSource)
	source.On("ListPending", ctx).Return(nil, errors.New("connection refused"))

	migrator := NewLegacyMigrator(source, memory.NewPlanRepository(), sharelink.NewPolicy("https://x"), nil)

	_, err := migrator.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list legacy plans")
}

func TestLegacyMigrator_StorageErrorAborts(t *testing.T) {
	ctx := context.Background()
	plan := domain.LegacyPlan{ID: uuid.New(), User: "owner-a", MonthlyIncome: 1000, Allocation: legacyAllocation()}

	source := new(MockLegacyPlanSource)
	source.On("ListPending", ctx).Return([]domain.LegacyPlan{plan, plan}, nil)

	migrator := NewLegacyMigrator(source, memory.NewPlanRepository(), sharelink.NewPolicy("https://x"), nil)

	report, err := migrator.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, report.Imported)

	var serr *domain.StorageError
	assert.True(t, errors.As(err, &serr))
}
