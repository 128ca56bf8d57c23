package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"floreria/internal/config"
	"floreria/internal/infra"
	"floreria/internal/repository"
	"floreria/internal/router"
	"floreria/internal/service"
	"floreria/internal/worker"

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

	db, err := infra.NewDatabase(cfg.DBDriver, cfg.DatabaseURL, !cfg.IsProduction())
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to connect to database")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Async mail pipeline. Handlers are wired here (composition root) so the
	// pool reaches the SMTP breaker the health check reports on.
	mailer := infra.NewMailer(cfg, infra.NewCircuitBreaker(infra.DefaultCBConfig()))
	if !mailer.Enabled() {
		log.Warn().Msg("SMTP_HOST empty, emails go straight to the DLQ")
	}
	pool := worker.NewPool(rdb)
	pool.Handle(worker.JobEmail, worker.NewEmailWorker(mailer).Process)
	pool.Start(ctx, cfg.WorkerPoolSize)

	// The cron reads the same sales the API serves.
	saleSvc := service.NewSaleService(
		repository.NewSaleRepository(db),
		repository.NewProductRepository(db),
		repository.NewSellerRepository(db),
		repository.NewEarningRepository(db),
		rdb,
	)
	worker.StartDueCron(ctx, worker.DueCronConfig{
		Source:   saleSvc,
		Queue:    worker.NewDispatcher(rdb),
		RDB:      rdb,
		To:       cfg.AlertEmailTo,
		Days:     cfg.DueAlertDays,
		Interval: cfg.DueCronInterval,
	})

	r := router.New(ctx, cfg, db, rdb, mailer.Breaker())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("Florería backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	cancel()
	pool.Wait()
	_ = rdb.Close()
	log.Info().Msg("server exited")
}
