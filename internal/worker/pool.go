package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReconciliation = "jobs:reconciliation"
	// MaxSettlementAttempts is how many times a queued transaction is
	// appended before it is moved to the dead letter queue.
	MaxSettlementAttempts = 3

	jobSettlement = "settlement"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueSettlement queues a transaction whose external write already
// applied so a worker appends it locally.
func (d *Dispatcher) EnqueueSettlement(ctx context.Context, tx *model.Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return err
	}
	return d.push(ctx, QueueReconciliation, Job{Type: jobSettlement, Payload: data})
}

func (d *Dispatcher) push(ctx context.Context, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the
// reconciliation queue. Each goroutine blocks on BRPOP, zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, txs repository.TransactionRepository, numWorkers int) {
	p := &pool{rdb: rdb, dispatcher: NewDispatcher(rdb), txs: txs}
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

type pool struct {
	rdb        *redis.Client
	dispatcher *Dispatcher
	txs        repository.TransactionRepository
}

func (p *pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, QueueReconciliation).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			p.handle(ctx, result[0], result[1])
		}
	}
}

func (p *pool) handle(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	err := ProcessSettlement(ctx, p.txs, job)
	if err == nil {
		return
	}

	job.Attempts++
	if job.Attempts >= MaxSettlementAttempts {
		abandon(ctx, p.rdb, job, err)
		return
	}
	log.Warn().Err(err).Int("attempts", job.Attempts).Msg("settlement append failed, requeued")
	if perr := p.dispatcher.push(ctx, queue, job); perr != nil {
		log.Error().Err(perr).Msg("failed to requeue settlement")
	}
}

// ProcessSettlement appends the queued transaction. A duplicate means an
// earlier attempt or a concurrent settle already stored it.
func ProcessSettlement(ctx context.Context, txs repository.TransactionRepository, job Job) error {
	if job.Type != jobSettlement {
		return fmt.Errorf("unknown job type %q", job.Type)
	}
	var tx model.Transaction
	if err := json.Unmarshal(job.Payload, &tx); err != nil {
		return fmt.Errorf("decode settlement: %w", err)
	}

	stored, err := txs.AppendTransaction(ctx, &tx)
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		log.Info().Str("order_id", orderID(&tx)).Msg("settlement already stored")
		return nil
	case err != nil:
		return err
	}
	log.Info().
		Str("order_id", orderID(&tx)).
		Str("transaction_id", stored.ID.String()).
		Msg("queued settlement appended")
	return nil
}

func orderID(tx *model.Transaction) string {
	if tx.OnlineOrderID == nil {
		return ""
	}
	return *tx.OnlineOrderID
}
