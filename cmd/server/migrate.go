package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/simaogato/planwise-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/planwise-backend/internal/logger"
	"github.com/simaogato/planwise-backend/internal/usecase/migration"
	"github.com/simaogato/planwise-backend/internal/usecase/sharelink"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.DB.DSN == "" {
			return fmt.Errorf("db.dsn is required")
		}

		db, err := postgres.NewDB(cmd.Context(), cfg.DB)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		if err := postgres.AutoMigrate(cmd.Context(), db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}

var migrateLegacyCmd = &cobra.Command{
	Use:   "migrate-legacy",
	Short: "Import plans from the legacy_investment_plans table",
	Long: `Converts every legacy plan that has not been imported yet into the current
schema. Legacy rows carry no plan name and key the owner as "user"; imported
plans get the default name, recomputed amounts and a share link derived from
server.public_base_url.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.DB.DSN == "" {
			return fmt.Errorf("db.dsn is required")
		}

		log, err := logger.New(cfg.Log)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		db, err := postgres.NewDB(cmd.Context(), cfg.DB)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		if err := postgres.AutoMigrate(cmd.Context(), db); err != nil {
			return err
		}

		migrator := migration.NewLegacyMigrator(
			postgres.NewLegacyPlanSource(db),
			postgres.NewPlanRepository(db),
			sharelink.NewPolicy(cfg.Server.PublicBaseURL),
			log,
		)
		report, err := migrator.Run(cmd.Context())
		if err != nil {
			log.Error("legacy migration failed", zap.Error(err), zap.Int("imported", report.Imported))
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d legacy plans, skipped %d\n", report.Imported, report.Skipped)
		return nil
	},
}
