package infra

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const (
	ArchivedOrdersKey   = "online_orders:archived"
	UnverifiedOrdersKey = "settlements:unverified"
)

// OrderTracker stores the local-only state of web orders in Redis sets:
// orders the operator archived and settlements that need verification.
type OrderTracker struct {
	rdb *redis.Client
}

func NewOrderTracker(rdb *redis.Client) *OrderTracker {
	return &OrderTracker{rdb: rdb}
}

func (t *OrderTracker) ArchivedIDs(ctx context.Context) (map[string]bool, error) {
	ids, err := t.rdb.SMembers(ctx, ArchivedOrdersKey).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (t *OrderTracker) Archive(ctx context.Context, orderID string) error {
	return t.rdb.SAdd(ctx, ArchivedOrdersKey, orderID).Err()
}

func (t *OrderTracker) MarkUnverified(ctx context.Context, orderID string) error {
	return t.rdb.SAdd(ctx, UnverifiedOrdersKey, orderID).Err()
}

// Unverified lists the settlements still waiting for verification.
func (t *OrderTracker) Unverified(ctx context.Context) ([]string, error) {
	return t.rdb.SMembers(ctx, UnverifiedOrdersKey).Result()
}

func (t *OrderTracker) ClearUnverified(ctx context.Context, orderID string) error {
	return t.rdb.SRem(ctx, UnverifiedOrdersKey, orderID).Err()
}
