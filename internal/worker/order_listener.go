package worker

// order_listener.go
// Subscribes to the web storefront's order change notifications. Every
// notification invalidates the worklist; prepaid orders flagged auto_settle
// are settled against the active shift. A manual settle may race with this
// path; the reconciler keeps the outcome single.

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/apierror"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/infra"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// OrderChange is the notification payload published on the order channel.
type OrderChange struct {
	ID         string            `json:"id"`
	Status     model.OrderStatus `json:"status"`
	AutoSettle bool              `json:"auto_settle"`
	Tender     model.Tender      `json:"tender,omitempty"`
}

// Settler is the part of the reconciler the listener drives.
type Settler interface {
	Settle(ctx context.Context, orderID string, t model.Tender) (*model.Transaction, error)
	Invalidate()
}

// StartOrderListener subscribes to channel until ctx ends.
func StartOrderListener(ctx context.Context, rdb *redis.Client, channel string, orders Settler, cb *infra.CircuitBreaker) {
	sub := rdb.Subscribe(ctx, channel)
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		log.Info().Str("channel", channel).Msg("order_listener: subscribed")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("order_listener: shutting down")
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				HandleOrderChange(ctx, orders, cb, msg.Payload)
			}
		}
	}()
}

// HandleOrderChange applies one notification. It reports whether a
// settlement was attempted.
func HandleOrderChange(ctx context.Context, orders Settler, cb *infra.CircuitBreaker, payload string) bool {
	orders.Invalidate()

	var change OrderChange
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		log.Warn().Err(err).Msg("order_listener: invalid payload")
		return false
	}
	if !change.AutoSettle || change.ID == "" {
		return false
	}
	if change.Status != "" && change.Status != model.OrderPending {
		return false
	}
	if !change.Tender.Valid() {
		log.Warn().Str("order_id", change.ID).Str("tender", string(change.Tender)).Msg("order_listener: auto_settle without a valid tender")
		return false
	}

	var tx *model.Transaction
	err := cb.Execute(func() error {
		var serr error
		tx, serr = orders.Settle(ctx, change.ID, change.Tender)
		return serr
	})
	switch {
	case err == nil:
		log.Info().Str("order_id", change.ID).Str("transaction_id", tx.ID.String()).Msg("order_listener: auto-settled")
	case errors.Is(err, infra.ErrCircuitOpen):
		log.Warn().Str("order_id", change.ID).Msg("order_listener: circuit open, left for manual settlement")
	case apierror.IsKind(err, apierror.KindNoActiveShift):
		log.Warn().Str("order_id", change.ID).Msg("order_listener: no open shift, left for manual settlement")
	default:
		log.Error().Err(err).Str("order_id", change.ID).Msg("order_listener: auto-settle failed")
	}
	return true
}

// IsStoreFailure reports whether err should count against the breaker guarding
// the external order store. Business outcomes such as a closed drawer do not.
func IsStoreFailure(err error) bool {
	if err == nil {
		return false
	}
	e, ok := apierror.As(err)
	if !ok {
		return true
	}
	return e.Kind == apierror.KindPersistence
}
