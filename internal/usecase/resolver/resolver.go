package resolver

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/simaogato/planwise-backend/internal/domain"
	"github.com/simaogato/planwise-backend/internal/usecase/allocator"
	"github.com/simaogato/planwise-backend/internal/usecase/recommendation"
)

// DefaultTimeout bounds a provider call when no timeout is configured
const DefaultTimeout = 20 * time.Second

// Fetcher is the recommendation capability the resolver depends on
type Fetcher interface {
	Fetch(ctx context.Context, monthlyIncome float64, riskLevel domain.RiskLevel) (recommendation.Result, error)
}

// AllocationResolver picks the allocation for a new plan
type AllocationResolver struct {
	Provider Fetcher
	Timeout  time.Duration
	Logger   *zap.Logger
}

// NewAllocationResolver creates a new AllocationResolver instance.
// A nil provider means every request uses the rule table.
func NewAllocationResolver(provider Fetcher, timeout time.Duration, logger *zap.Logger) *AllocationResolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocationResolver{
		Provider: provider,
		Timeout:  timeout,
		Logger:   logger,
	}
}

type fetchOutcome struct {
	result recommendation.Result
	err    error
}

// Resolve returns an allocation for monthlyIncome at riskLevel.
// Logic:
//  1. Ask the provider, bounded by Timeout
//  2. On success adopt its percentages and advice, recompute amounts, and join the advice into the summary
//  3. On any provider failure (error kind, timeout, panic) log it and use the rule table instead
//
// Provider failures never reach the caller. The only error returned is for inputs the
// rule table rejects (non-positive income, unknown risk level).
func (r *AllocationResolver) Resolve(ctx context.Context, monthlyIncome float64, riskLevel domain.RiskLevel) (domain.AllocationResult, error) {
	if r.Provider != nil {
		result, err := r.fetch(ctx, monthlyIncome, riskLevel)
		if err == nil {
			recs := result.Recommendations
			return domain.AllocationResult{
				Allocation:      result.Allocation.WithAmounts(monthlyIncome),
				Recommendations: &recs,
				Summary:         Summarize(recs),
				Source:          domain.AllocationSourceProvider,
			}, nil
		}
		r.logger().Warn("recommendation provider failed, using rule-based allocation",
			zap.String("kind", string(recommendation.KindOf(err))),
			zap.String("risk_level", string(riskLevel)),
			zap.Error(err),
		)
	}

	return allocator.Compute(monthlyIncome, riskLevel)
}

// fetch runs the provider call in its own goroutine so a slow call is abandoned at the deadline
func (r *AllocationResolver) fetch(ctx context.Context, monthlyIncome float64, riskLevel domain.RiskLevel) (recommendation.Result, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan fetchOutcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fetchOutcome{err: &recommendation.ProviderError{
					Kind: recommendation.KindUnexpected,
					Err:  fmt.Errorf("provider panic: %v", p),
				}}
			}
		}()
		result, err := r.Provider.Fetch(ctx, monthlyIncome, riskLevel)
		done <- fetchOutcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-ctx.Done():
		return recommendation.Result{}, &recommendation.ProviderError{
			Kind: recommendation.KindTransport,
			Err:  fmt.Errorf("provider call abandoned: %w", ctx.Err()),
		}
	}
}

func (r *AllocationResolver) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// Summarize joins per-bucket advice under fixed labels
func Summarize(recs domain.Recommendations) string {
	return fmt.Sprintf("SIPs: %s\nCryptocurrency: %s\nGold: %s", recs.SIPs, recs.Cryptocurrency, recs.Gold)
}
