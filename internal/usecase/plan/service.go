package plan

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simaogato/planwise-backend/internal/domain"
)

// AllocationResolver produces the allocation and summary for a new plan
type AllocationResolver interface {
	Resolve(ctx context.Context, monthlyIncome float64, riskLevel domain.RiskLevel) (domain.AllocationResult, error)
}

// ShareLinks derives public links for shared plans
type ShareLinks interface {
	Derive(planID uuid.UUID, isSharedNow bool) *string
	Link(planID uuid.UUID) string
}

// CreatePlanInput represents the input for creating a plan.
// MonthlyIncome is NaN when the caller sent a missing or non-numeric value.
type CreatePlanInput struct {
	OwnerID       string
	PlanName      string
	MonthlyIncome float64
	RiskLevel     string
}

// PlanService owns the investment plan lifecycle
type PlanService struct {
	PlanRepo   domain.PlanRepository
	Resolver   AllocationResolver
	ShareLinks ShareLinks
	Cache      domain.PlanCache
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewPlanService creates a new PlanService instance. cache may be nil.
func NewPlanService(
	planRepo domain.PlanRepository,
	resolver AllocationResolver,
	shareLinks ShareLinks,
	cache domain.PlanCache,
	logger *zap.Logger,
) *PlanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanService{
		PlanRepo:   planRepo,
		Resolver:   resolver,
		ShareLinks: shareLinks,
		Cache:      cache,
		Logger:     logger,
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreatePlan validates the input, resolves an allocation and persists a new plan.
// Logic:
//  1. Validate owner, income and risk level; nothing else runs on failure
//  2. Resolve the allocation (provider first, rule table on any provider failure)
//  3. Persist with IsShared=false, ShareLink=nil, CreatedAt=now
func (s *PlanService) CreatePlan(ctx context.Context, input CreatePlanInput) (*domain.InvestmentPlan, error) {
	if input.OwnerID == "" {
		return nil, domain.ErrUnauthorized
	}

	riskLevel, planName, err := validateCreateInput(input)
	if err != nil {
		return nil, err
	}

	resolved, err := s.Resolver.Resolve(ctx, input.MonthlyIncome, riskLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve allocation: %w", err)
	}

	plan := &domain.InvestmentPlan{
		ID:              uuid.New(),
		OwnerID:         input.OwnerID,
		PlanName:        planName,
		MonthlyIncome:   input.MonthlyIncome,
		RiskLevel:       riskLevel,
		Allocation:      resolved.Allocation,
		Recommendations: resolved.Recommendations,
		Summary:         resolved.Summary,
		CreatedAt:       s.now(),
		IsShared:        false,
		ShareLink:       nil,
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}

	if err := s.PlanRepo.Create(ctx, plan); err != nil {
		return nil, err
	}

	s.Logger.Info("plan created",
		zap.String("plan_id", plan.ID.String()),
		zap.String("risk_level", string(plan.RiskLevel)),
		zap.String("source", string(resolved.Source)),
	)
	return plan, nil
}

// validateCreateInput collects every field problem at once
func validateCreateInput(input CreatePlanInput) (domain.RiskLevel, string, error) {
	verr := &domain.ValidationError{}

	if math.IsNaN(input.MonthlyIncome) || math.IsInf(input.MonthlyIncome, 0) {
		verr.Add("monthlyIncome", "monthly income must be a number")
	} else if input.MonthlyIncome <= 0 {
		verr.Add("monthlyIncome", "monthly income must be positive")
	} else if input.MonthlyIncome > domain.MaxMonthlyIncome {
		verr.Add("monthlyIncome", fmt.Sprintf("monthly income must be at most %.0f", domain.MaxMonthlyIncome))
	}

	riskLevel, ok := domain.ParseRiskLevel(input.RiskLevel)
	if !ok {
		verr.Add("riskLevel", "risk level must be one of Low, Medium, High")
	}

	planName := strings.TrimSpace(input.PlanName)
	if planName == "" {
		planName = domain.DefaultPlanName
	}
	if len([]rune(planName)) > domain.MaxPlanNameLength {
		verr.Add("planName", fmt.Sprintf("plan name must be at most %d characters", domain.MaxPlanNameLength))
	}

	if err := verr.OrNil(); err != nil {
		return "", "", err
	}
	return riskLevel, planName, nil
}

// ListPlans returns the owner's plans, newest first. No plans is not an error.
func (s *PlanService) ListPlans(ctx context.Context, ownerID string) ([]*domain.InvestmentPlan, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}

	plans, err := s.PlanRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []*domain.InvestmentPlan{}
	}
	return plans, nil
}

// GetPlan returns a plan owned by ownerID.
// A plan owned by someone else is reported as domain.ErrPlanNotFound.
func (s *PlanService) GetPlan(ctx context.Context, planID uuid.UUID, ownerID string) (*domain.InvestmentPlan, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.PlanRepo.GetByIDAndOwner(ctx, planID, ownerID)
}

// GetSharedPlan returns a plan to anyone, provided it is currently shared.
// Reads go through the shared-plan cache when one is configured.
// The fill after a repository read only lands on an empty key, and ToggleShare and
// DeletePlan leave a tombstone, so a read that raced an unshare is never cached.
func (s *PlanService) GetSharedPlan(ctx context.Context, planID uuid.UUID) (*domain.InvestmentPlan, error) {
	if s.Cache != nil {
		cached, found, err := s.Cache.GetPlan(ctx, planID)
		if err != nil {
			s.Logger.Warn("shared plan cache read failed", zap.String("plan_id", planID.String()), zap.Error(err))
		} else if found && cached.IsShared {
			return cached, nil
		}
	}

	plan, err := s.PlanRepo.GetShared(ctx, planID)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.SetPlan(ctx, plan); err != nil {
			s.Logger.Warn("shared plan cache write failed", zap.String("plan_id", planID.String()), zap.Error(err))
		}
	}
	return plan, nil
}

// DeletePlan removes a plan owned by ownerID. There is no soft delete.
func (s *PlanService) DeletePlan(ctx context.Context, planID uuid.UUID, ownerID string) error {
	if ownerID == "" {
		return domain.ErrUnauthorized
	}

	if err := s.PlanRepo.DeleteByIDAndOwner(ctx, planID, ownerID); err != nil {
		return err
	}

	s.invalidate(ctx, planID)
	s.Logger.Info("plan deleted", zap.String("plan_id", planID.String()))
	return nil
}

// ToggleShare flips the shared flag of a plan owned by ownerID and sets or clears its link.
// The flip is a single atomic repository operation, so concurrent toggles never lose the link invariant.
func (s *PlanService) ToggleShare(ctx context.Context, planID uuid.UUID, ownerID string) (*domain.InvestmentPlan, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}

	plan, err := s.PlanRepo.ToggleShare(ctx, planID, ownerID, s.ShareLinks.Link(planID))
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, planID)

	// The flip is already committed, so a mismatch is reported but not returned.
	want := s.ShareLinks.Derive(plan.ID, plan.IsShared)
	if (want == nil) != (plan.ShareLink == nil) || (want != nil && *want != *plan.ShareLink) {
		s.Logger.Error("stored share link does not match shared flag",
			zap.String("plan_id", planID.String()),
			zap.Bool("is_shared", plan.IsShared),
			zap.Stringp("share_link", plan.ShareLink),
		)
	}
	s.Logger.Info("plan share toggled",
		zap.String("plan_id", planID.String()),
		zap.Bool("is_shared", plan.IsShared),
	)
	return plan, nil
}

func (s *PlanService) invalidate(ctx context.Context, planID uuid.UUID) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.DeletePlan(ctx, planID); err != nil {
		s.Logger.Warn("shared plan cache invalidation failed", zap.String("plan_id", planID.String()), zap.Error(err))
	}
}

func (s *PlanService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now()
}
