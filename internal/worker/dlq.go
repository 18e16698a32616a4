package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DeadSettlementsKey holds settlements a worker gave up appending. The
// storefront already shows them settled, so each one needs a person to
// record the sale by hand.
const DeadSettlementsKey = "dlq:" + QueueReconciliation

// DeadSettlement is one abandoned settlement. Transaction is the queued
// payload as received so it can be replayed unchanged.
type DeadSettlement struct {
	OrderID       string          `json:"order_id,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	ShiftID       string          `json:"shift_id,omitempty"`
	Total         string          `json:"total,omitempty"`
	Transaction   json.RawMessage `json:"transaction"`
	LastError     string          `json:"last_error"`
	Attempts      int             `json:"attempts"`
	FailedAt      time.Time       `json:"failed_at"`
}

func deadSettlement(job Job, cause error, now time.Time) DeadSettlement {
	d := DeadSettlement{
		Transaction: job.Payload,
		LastError:   cause.Error(),
		Attempts:    job.Attempts,
		FailedAt:    now.UTC(),
	}
	// An undecodable payload is still kept; only the summary fields stay empty.
	var tx model.Transaction
	if json.Unmarshal(job.Payload, &tx) == nil {
		d.OrderID = orderID(&tx)
		d.TransactionID = tx.ID.String()
		d.ShiftID = tx.ShiftID.String()
		d.Total = tx.Total.StringFixed(2)
	}
	return d
}

// abandon parks a settlement that ran out of attempts.
func abandon(ctx context.Context, rdb *redis.Client, job Job, cause error) {
	d := deadSettlement(job, cause, time.Now())
	data, err := json.Marshal(d)
	if err != nil {
		log.Error().Err(err).Str("order_id", d.OrderID).Msg("settlement: could not encode dead letter")
		return
	}
	if err := rdb.LPush(ctx, DeadSettlementsKey, data).Err(); err != nil {
		log.Error().Err(err).Str("order_id", d.OrderID).Msg("settlement: could not park dead letter")
		return
	}
	log.Error().
		Str("order_id", d.OrderID).
		Str("transaction_id", d.TransactionID).
		Str("total", d.Total).
		Int("attempts", d.Attempts).
		Str("last_error", d.LastError).
		Msg("settlement: abandoned after retries, record it manually")
}

// DeadSettlements counts abandoned settlements, reported by /health.
func DeadSettlements(ctx context.Context, rdb *redis.Client) (int64, error) {
	return rdb.LLen(ctx, DeadSettlementsKey).Result()
}
