package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simaogato/planwise-backend/internal/config"
)

var (
	configPath string
	envOnly    bool
)

// rootCmd runs the API server when invoked without a subcommand
var rootCmd = &cobra.Command{
	Use:   "planwise",
	Short: "Investment plan allocation service",
	Long: `planwise creates monthly investment plans that split income across
SIPs, cryptocurrency and gold, and lets owners share them publicly.

Configuration is read from a YAML file and PLANWISE_* environment variables.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	defaultPath := os.Getenv("PLANWISE_CONFIG")
	defaultEnvOnly := defaultPath == ""
	if raw := os.Getenv("PLANWISE_ENV_ONLY"); raw != "" {
		defaultEnvOnly = strings.EqualFold(raw, "true") || raw == "1"
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultPath, "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVar(&envOnly, "env-only", defaultEnvOnly, "Read configuration from the environment only")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateLegacyCmd)
	rootCmd.AddCommand(tokenCmd)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath, envOnly || configPath == "")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
