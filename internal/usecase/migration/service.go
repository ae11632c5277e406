package migration

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simaogato/planwise-backend/internal/domain"
)

// ShareLinks produces the canonical public link for a plan id
type ShareLinks interface {
	Link(planID uuid.UUID) string
}

// Report summarizes a legacy migration run
type Report struct {
	Imported int
	Skipped  int
}

// LegacyMigrator converts legacy plans into canonical plans
type LegacyMigrator struct {
	Source     domain.LegacyPlanSource
	PlanRepo   domain.PlanRepository
	ShareLinks ShareLinks
	Logger     *zap.Logger
}

// NewLegacyMigrator creates a new LegacyMigrator instance
func NewLegacyMigrator(source domain.LegacyPlanSource, planRepo domain.PlanRepository, shareLinks ShareLinks, logger *zap.Logger) *LegacyMigrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LegacyMigrator{
		Source:     source,
		PlanRepo:   planRepo,
		ShareLinks: shareLinks,
		Logger:     logger,
	}
}

// Run imports every pending legacy plan.
// Logic:
//  1. List legacy plans not yet present in the canonical store
//  2. Convert each one; records that fail conversion are skipped and logged
//  3. Shared plans get their link re-derived from the current base URL
//  4. Persist; a storage failure aborts the run
func (m *LegacyMigrator) Run(ctx context.Context) (Report, error) {
	var report Report

	legacy, err := m.Source.ListPending(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list legacy plans: %w", err)
	}

	for i := range legacy {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		plan, err := legacy[i].Migrate()
		if err != nil {
			report.Skipped++
			m.Logger.Warn("skipping legacy plan",
				zap.String("legacy_id", legacy[i].ID.String()),
				zap.Error(err),
			)
			continue
		}

		if plan.IsShared {
			link := m.ShareLinks.Link(plan.ID)
			plan.ShareLink = &link
		}

		if err := m.PlanRepo.Create(ctx, plan); err != nil {
			return report, fmt.Errorf("failed to import legacy plan %s: %w", plan.ID, err)
		}
		report.Imported++
	}

	m.Logger.Info("legacy migration finished",
		zap.Int("imported", report.Imported),
		zap.Int("skipped", report.Skipped),
	)
	return report, nil
}
