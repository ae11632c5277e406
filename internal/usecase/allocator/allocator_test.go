package allocator

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/planwise-backend/internal/domain"
)

func TestCompute_FixedTable(t *testing.T) {
	tests := []struct {
		risk                  domain.RiskLevel
		sips, crypto, goldPct float64
	}{
		{domain.RiskLevelLow, 60, 10, 30},
		{domain.RiskLevelMedium, 50, 30, 20},
		{domain.RiskLevelHigh, 40, 50, 10},
	}

	for _, tt := range tests {
		t.Run(string(tt.risk), func(t *testing.T) {
			result, err := Compute(10000, tt.risk)
			require.NoError(t, err)

			assert.Equal(t, tt.sips, result.Allocation.SIPs.Percentage)
			assert.Equal(t, tt.crypto, result.Allocation.Cryptocurrency.Percentage)
			assert.Equal(t, tt.goldPct, result.Allocation.Gold.Percentage)
			assert.Equal(t, domain.AllocationSourceRules, result.Source)
			assert.NotEmpty(t, result.Summary)
			require.NotNil(t, result.Recommendations)
			assert.True(t, result.Recommendations.Complete())
		})
	}
}

func TestCompute_LowRiskScenario(t *testing.T) {
	// Income 10000 at Low risk: SIPs=6000, Crypto=1000, Gold=3000
	result, err := Compute(10000, domain.RiskLevelLow)
	require.NoError(t, err)

	assert.Equal(t, float64(6000), result.Allocation.SIPs.Amount)
	assert.Equal(t, float64(1000), result.Allocation.Cryptocurrency.Amount)
	assert.Equal(t, float64(3000), result.Allocation.Gold.Amount)
}

func TestCompute_PercentagesSumTo100AndAmountsMatch(t *testing.T) {
	incomes := []float64{0.01, 1, 333.33, 4999.99, 10000, 123456.789, 1e9}

	for _, risk := range domain.RiskLevels {
		for _, income := range incomes {
			result, err := Compute(income, risk)
			require.NoError(t, err)

			a := result.Allocation
			assert.Equal(t, float64(100), a.TotalPercentage(), "risk=%s income=%v", risk, income)

			for _, share := range []domain.BucketShare{a.SIPs, a.Cryptocurrency, a.Gold} {
				want := income * share.Percentage / 100
				assert.InDelta(t, want, share.Amount, math.Abs(want)*1e-12+1e-12)
			}
		}
	}
}

func TestCompute_Deterministic(t *testing.T) {
	for _, risk := range domain.RiskLevels {
		first, err := Compute(7321.45, risk)
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			again, err := Compute(7321.45, risk)
			require.NoError(t, err)
			if diff := cmp.Diff(first, again); diff != "" {
				t.Fatalf("Compute(%s) changed between calls (-first +again):\n%s", risk, diff)
			}
		}
	}
}

func TestCompute_SummaryIsStaticPerTier(t *testing.T) {
	small, err := Compute(100, domain.RiskLevelHigh)
	require.NoError(t, err)
	large, err := Compute(1000000, domain.RiskLevelHigh)
	require.NoError(t, err)

	assert.Equal(t, small.Summary, large.Summary)
	assert.Equal(t, *small.Recommendations, *large.Recommendations)
}

func TestCompute_ReturnedAdviceIsACopy(t *testing.T) {
	first, err := Compute(100, domain.RiskLevelLow)
	require.NoError(t, err)
	first.Recommendations.SIPs = "changed"

	second, err := Compute(100, domain.RiskLevelLow)
	require.NoError(t, err)
	assert.NotEqual(t, "changed", second.Recommendations.SIPs)
}

func TestCompute_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		income float64
		risk   domain.RiskLevel
		errMsg string
	}{
		{"zero income", 0, domain.RiskLevelLow, "monthly income must be positive"},
		{"negative income", -5, domain.RiskLevelLow, "monthly income must be positive"},
		{"NaN income", math.NaN(), domain.RiskLevelLow, "monthly income must be positive"},
		{"unknown risk", 100, domain.RiskLevel("Extreme"), "invalid risk level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.income, tt.risk)
			assert.EqualError(t, err, tt.errMsg)
		})
	}
}
