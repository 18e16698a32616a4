package worker

// verify_cron.go
// Periodically re-reads every settlement flagged as needing verification.
// Orders that now read settled and have a local transaction are cleared;
// the rest stay flagged and are logged on every run.

import (
	"context"
	"errors"
	"time"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/infra"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// UnverifiedSet is the set of order ids whose settlement outcome is unknown.
type UnverifiedSet interface {
	Unverified(ctx context.Context) ([]string, error)
	ClearUnverified(ctx context.Context, orderID string) error
}

// Verifier checks one order against both stores.
type Verifier interface {
	Verify(ctx context.Context, orderID string) (bool, error)
}

type VerifyCronConfig struct {
	Schedule string // robfig/cron spec, e.g. "@every 1m"
	Set      UnverifiedSet
	Orders   Verifier
	CB       *infra.CircuitBreaker
	Timeout  time.Duration
}

// StartVerifyCron schedules the verification job and stops it when ctx ends.
func StartVerifyCron(ctx context.Context, cfg VerifyCronConfig) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(cfg.Schedule, func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("verify_cron: recovered")
			}
		}()
		VerifyPending(ctx, cfg)
	}); err != nil {
		return nil, err
	}
	c.Start()
	log.Info().Str("schedule", cfg.Schedule).Msg("verify_cron: started")

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		log.Info().Msg("verify_cron: shutting down")
	}()
	return c, nil
}

// VerifyPending runs one verification pass and returns how many ids were cleared.
func VerifyPending(ctx context.Context, cfg VerifyCronConfig) int {
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("verify_cron: circuit breaker is open, skipping tick")
		return 0
	}

	ids, err := cfg.Set.Unverified(ctx)
	if err != nil {
		log.Error().Err(err).Msg("verify_cron: failed to read unverified settlements")
		return 0
	}

	cleared := 0
	for _, id := range ids {
		var ok bool
		err := cfg.CB.Execute(func() error {
			callCtx, cancel := withTimeout(ctx, cfg.Timeout)
			defer cancel()
			var verr error
			ok, verr = cfg.Orders.Verify(callCtx, id)
			return verr
		})
		if err != nil {
			log.Warn().Err(err).Str("order_id", id).Msg("verify_cron: verification failed")
			if errors.Is(err, infra.ErrCircuitOpen) {
				return cleared
			}
			continue
		}
		if !ok {
			log.Warn().Str("order_id", id).Msg("verify_cron: settlement still unverified")
			continue
		}
		if err := cfg.Set.ClearUnverified(ctx, id); err != nil {
			log.Error().Err(err).Str("order_id", id).Msg("verify_cron: failed to clear id")
			continue
		}
		cleared++
		log.Info().Str("order_id", id).Msg("verify_cron: settlement verified")
	}
	return cleared
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
