package main

import (
	"errors"
	"fmt"
	"time"

	"recipebox/internal/middleware"

	"github.com/spf13/cobra"
)

var (
	tokenUser string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for local development",
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "User ID to embed in the user_id claim (required)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 8*time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
}

func runToken(cmd *cobra.Command, args []string) error {
	if cfg.IsProduction() {
		return errors.New("refusing to mint tokens with APP_ENV=production")
	}
	if tokenUser == "" {
		return errors.New("--user is required")
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if tokenTTL <= 0 {
		return errors.New("--ttl must be positive")
	}
	tok, err := middleware.IssueToken(cfg.JWTSecret, tokenUser, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok)
	return nil
}
