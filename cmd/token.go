package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"studytrack/config"
	"studytrack/utils"
)

// newTokenCmd mints a bearer token for local development; account
// management lives outside this service.
func newTokenCmd() *cobra.Command {
	var (
		userID string
		email  string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if userID == "" {
				return errors.New("--user is required")
			}
			tok, err := utils.GenerateJWT([]byte(cfg.JWTSecret), userID, email, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id to embed")
	cmd.Flags().StringVar(&email, "email", "", "e-mail used for reports")
	cmd.Flags().DurationVar(&ttl, "ttl", 72*time.Hour, "token lifetime")
	return cmd
}
