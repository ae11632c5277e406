package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/simaogato/planwise-backend/internal/domain"
	"github.com/simaogato/planwise-backend/internal/usecase/recommendation"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fetchFunc adapts a function to the Fetcher interface
type fetchFunc func(ctx context.Context, income float64, risk domain.RiskLevel) (recommendation.Result, error)

func (f fetchFunc) Fetch(ctx context.Context, income float64, risk domain.RiskLevel) (recommendation.Result, error) {
	return f(ctx, income, risk)
}

func failingWith(err error) Fetcher {
	return fetchFunc(func(context.Context, float64, domain.RiskLevel) (recommendation.Result, error) {
		return recommendation.Result{}, err
	})
}

func providerResult() recommendation.Result {
	return recommendation.Result{
		Allocation: domain.Allocation{
			SIPs:           domain.BucketShare{Percentage: 45, Amount: 1},
			Cryptocurrency: domain.BucketShare{Percentage: 25, Amount: 2},
			Gold:           domain.BucketShare{Percentage: 30, Amount: 3},
		},
		Recommendations: domain.Recommendations{
			SIPs:           "Index funds.",
			Cryptocurrency: "Bitcoin only.",
			Gold:           "Gold ETFs.",
		},
	}
}

func assertAllocationInvariant(t *testing.T, income float64, a domain.Allocation) {
	t.Helper()
	assert.InDelta(t, 100, a.TotalPercentage(), 1e-9)
	for _, share := range []domain.BucketShare{a.SIPs, a.Cryptocurrency, a.Gold} {
		assert.InDelta(t, income*share.Percentage/100, share.Amount, 1e-6)
	}
}

func TestResolve_ProviderSuccess(t *testing.T) {
	provider := fetchFunc(func(context.Context, float64, domain.RiskLevel) (recommendation.Result, error) {
		return providerResult(), nil
	})
	r := NewAllocationResolver(provider, time.Second, nil)

	result, err := r.Resolve(context.Background(), 2000, domain.RiskLevelMedium)

	require.NoError(t, err)
	assert.Equal(t, domain.AllocationSourceProvider, result.Source)
	assert.Equal(t, float64(45), result.Allocation.SIPs.Percentage)
	assert.Equal(t, float64(900), result.Allocation.SIPs.Amount, "amounts are recomputed from percentages")
	assert.Equal(t, float64(600), result.Allocation.Gold.Amount)
	require.NotNil(t, result.Recommendations)
	assert.Equal(t, "Bitcoin only.", result.Recommendations.Cryptocurrency)
	assert.Equal(t, "SIPs: Index funds.\nCryptocurrency: Bitcoin only.\nGold: Gold ETFs.", result.Summary)
	assertAllocationInvariant(t, 2000, result.Allocation)
}

func TestResolve_FallsBackOnEveryProviderFailure(t *testing.T) {
	kinds := []recommendation.Kind{
		recommendation.KindEmptyResponse,
		recommendation.KindMalformedJSON,
		recommendation.KindMissingAllocation,
		recommendation.KindInvalidAllocation,
		recommendation.KindMissingRecommendations,
		recommendation.KindTransport,
	}

	providers := map[string]Fetcher{
		"plain error": failingWith(errors.New("boom")),
		"panic": fetchFunc(func(context.Context, float64, domain.RiskLevel) (recommendation.Result, error) {
			panic("provider exploded")
		}),
	}
	for _, kind := range kinds {
		providers[string(kind)] = failingWith(&recommendation.ProviderError{Kind: kind, Err: errors.New("bad")})
	}

	for name, provider := range providers {
		t.Run(name, func(t *testing.T) {
			r := NewAllocationResolver(provider, time.Second, nil)

			for _, risk := range domain.RiskLevels {
				result, err := r.Resolve(context.Background(), 10000, risk)

				require.NoError(t, err)
				assert.Equal(t, domain.AllocationSourceRules, result.Source)
				assert.NotEmpty(t, result.Summary)
				assertAllocationInvariant(t, 10000, result.Allocation)
			}
		})
	}
}

func TestResolve_LowRiskFallbackValues(t *testing.T) {
	r := NewAllocationResolver(failingWith(errors.New("down")), time.Second, nil)

	result, err := r.Resolve(context.Background(), 10000, domain.RiskLevelLow)

	require.NoError(t, err)
	assert.Equal(t, float64(60), result.Allocation.SIPs.Percentage)
	assert.Equal(t, float64(6000), result.Allocation.SIPs.Amount)
	assert.Equal(t, float64(10), result.Allocation.Cryptocurrency.Percentage)
	assert.Equal(t, float64(30), result.Allocation.Gold.Percentage)
}

func TestResolve_TimeoutAbandonsSlowProvider(t *testing.T) {
	provider := fetchFunc(func(ctx context.Context, _ float64, _ domain.RiskLevel) (recommendation.Result, error) {
		<-ctx.Done()
		return recommendation.Result{}, ctx.Err()
	})
	r := NewAllocationResolver(provider, 20*time.Millisecond, nil)

	start := time.Now()
	result, err := r.Resolve(context.Background(), 500, domain.RiskLevelHigh)

	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, domain.AllocationSourceRules, result.Source)
	assert.Equal(t, float64(50), result.Allocation.Cryptocurrency.Percentage)
}

func TestResolve_CanceledCallerStillGetsAllocation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := fetchFunc(func(ctx context.Context, _ float64, _ domain.RiskLevel) (recommendation.Result, error) {
		<-ctx.Done()
		return recommendation.Result{}, ctx.Err()
	})
	r := NewAllocationResolver(provider, time.Second, nil)

	result, err := r.Resolve(ctx, 500, domain.RiskLevelMedium)

	require.NoError(t, err)
	assert.Equal(t, domain.AllocationSourceRules, result.Source)
}

func TestResolve_NilProviderUsesRules(t *testing.T) {
	r := NewAllocationResolver(nil, 0, nil)
	assert.Equal(t, DefaultTimeout, r.Timeout)

	result, err := r.Resolve(context.Background(), 100, domain.RiskLevelMedium)

	require.NoError(t, err)
	assert.Equal(t, domain.AllocationSourceRules, result.Source)
}

func TestResolve_LogsProviderFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	provider := failingWith(&recommendation.ProviderError{Kind: recommendation.KindMalformedJSON, Err: errors.New("bad json")})
	r := NewAllocationResolver(provider, time.Second, zap.New(core))

	_, err := r.Resolve(context.Background(), 100, domain.RiskLevelLow)
	require.NoError(t, err)

	entries := logs.FilterMessage("recommendation provider failed, using rule-based allocation").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "malformed_json", fields["kind"])
	assert.Equal(t, "Low", fields["risk_level"])
}

func TestResolve_InvalidInputIsRejected(t *testing.T) {
	r := NewAllocationResolver(nil, time.Second, nil)

	_, err := r.Resolve(context.Background(), -5, domain.RiskLevelLow)
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	got := Summarize(domain.Recommendations{SIPs: "a", Cryptocurrency: "b", Gold: "c"})
	assert.Equal(t, "SIPs: a\nCryptocurrency: b\nGold: c", got)
}
