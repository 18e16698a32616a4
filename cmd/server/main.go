package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/config"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/handler"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/infra"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/repository"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/router"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/service"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger. dev: pretty, prod: JSON
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	settings, err := cfg.Pricing()
	if err != nil {
		log.Fatal().Err(err).Str("tax_rate", cfg.TaxRate).Msg("invalid TAX_RATE")
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

	// ── Composition root ─────────────────────────────────────────────────────
	store := repository.WithTimeouts(repository.NewStore(db), cfg.StoreTimeout, cfg.ExternalTimeout)
	tracker := infra.NewOrderTracker(rdb)
	dispatcher := worker.NewDispatcher(rdb)

	shifts := service.NewShiftService(store)
	orders := service.NewOrderService(store, shifts, tracker, dispatcher, settings)
	checkout := service.NewCheckoutService(store, shifts, orders, settings)

	// Background workers: queued appends, verification of ambiguous
	// settlements and the storefront change stream.
	worker.StartWorkerPool(ctx, rdb, store, cfg.WorkerPoolSize)

	verifyCB := newStoreBreaker("verify_cron")
	if _, err := worker.StartVerifyCron(ctx, worker.VerifyCronConfig{
		Schedule: cfg.VerifySchedule,
		Set:      tracker,
		Orders:   orders,
		CB:       verifyCB,
		Timeout:  cfg.ExternalTimeout,
	}); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.VerifySchedule).Msg("invalid VERIFY_SCHEDULE")
	}

	worker.StartOrderListener(ctx, rdb, cfg.OrderChannel, orders, newStoreBreaker("order_listener"))

	r := router.New(cfg, router.Deps{
		Shifts:   shifts,
		Checkout: checkout,
		Orders:   orders,
		Health:   handler.Health(db, rdb),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("Churre Malcriado POS listening on :%d", cfg.Port)
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

// newStoreBreaker trips on storage failures only; business rejections such
// as a closed drawer pass through.
func newStoreBreaker(name string) *infra.CircuitBreaker {
	cfg := infra.DefaultCBConfig(name)
	cfg.IsFailure = worker.IsStoreFailure
	return infra.NewCircuitBreaker(cfg)
}
