package main

import (
	"fmt"
	"os"
	"time"

	"recipebox/internal/config"
	"recipebox/internal/infra"
	"recipebox/internal/router"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "recipectl",
	Short: "Maintenance tasks for the recipebox backend",
	Long: `recipectl runs one-off maintenance against the recipebox database:
recomputing cached nutrition snapshots, repairing category paths and minting
development tokens. Configuration comes from the same environment variables
as the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339})
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(recalcCmd)
	rootCmd.AddCommand(repairPathsCmd)
	rootCmd.AddCommand(tokenCmd)
}

// openServices connects to Postgres and, when reachable, Redis so category
// changes also drop the server's cached tree.
func openServices() (*router.Services, func(), error) {
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	var rdb *redis.Client
	if c, err := infra.NewRedis(cfg.RedisURL); err != nil {
		log.Warn().Err(err).Msg("redis unavailable; category tree cache will expire on its own")
	} else {
		rdb = c
	}

	closeFn := func() {
		if rdb != nil {
			_ = rdb.Close()
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return router.NewServices(cfg, router.Deps{DB: db, Redis: rdb}), closeFn, nil
}
