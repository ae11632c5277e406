package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/simaogato/planwise-backend/internal/auth"
)

var tokenTTL time.Duration

// tokenCmd mints a bearer token for local development and smoke tests
var tokenCmd = &cobra.Command{
	Use:   "token <owner-id>",
	Short: "Sign an API token for an owner id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ttl := cfg.Auth.TokenTTL
		if tokenTTL > 0 {
			ttl = tokenTTL
		}
		jwt := auth.JWT{Secret: []byte(cfg.Auth.JWTSecret), TokenTTL: ttl, Issuer: cfg.Auth.Issuer}

		token, expiresAt, err := jwt.SignOwner(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (defaults to auth.token_ttl)")
}
