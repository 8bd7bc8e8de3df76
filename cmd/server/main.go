package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipebox/internal/config"
	"recipebox/internal/infra"
	"recipebox/internal/middleware"
	"recipebox/internal/router"
	"recipebox/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store *infra.S3ImageStore
	if cfg.S3Bucket != "" {
		store, err = infra.NewS3ImageStore(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3PublicBaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to configure image store")
		}
	} else {
		log.Warn().Msg("S3_BUCKET not set; image uploads disabled")
	}

	limiter := middleware.NewLimiter(cfg.RateLimitRPM, time.Minute)
	limiter.StartPurge(ctx, time.Minute)

	dispatcher := worker.NewDispatcher(rdb)
	deps := router.Deps{DB: db, Redis: rdb, ImageStore: store, Queue: dispatcher, Limiter: limiter}
	svcs := router.NewServices(cfg, deps)

	// Worker handlers are wired here (composition root) so the pool shares
	// the same service instances as the HTTP layer.
	worker.StartWorkerPool(ctx, rdb, &worker.WorkerHandlers{
		NutritionRefresh: worker.NewNutritionRefreshWorker(svcs.Nutrition),
	}, cfg.WorkerPoolSize)
	worker.StartPathSweeper(ctx, svcs.Categories, cfg.PathSweepInterval)

	r := router.New(cfg, deps, svcs)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("recipebox listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	_ = rdb.Close()
	log.Info().Msg("server exited")
}
