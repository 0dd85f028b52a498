package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/billed/billed-app/internal/core/domain"
)

const allBillsToken = "*"

// BillCache stores per-owner bill lists as JSON.
// Key format: bills:<email>, with bills:* holding the admin-wide list.
type BillCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBillCache creates a BillCache wrapping the given Redis client.
func NewBillCache(client *redis.Client, ttl time.Duration) *BillCache {
	return &BillCache{client: client, ttl: ttl}
}

// Get returns the cached list. A missing key is a miss, not an error.
func (c *BillCache) Get(ctx context.Context, email string) ([]domain.Bill, bool, error) {
	payload, err := c.client.Get(ctx, c.key(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("bill cache get: %w", err)
	}

	var bills []domain.Bill
	if err := json.Unmarshal(payload, &bills); err != nil {
		return nil, false, fmt.Errorf("bill cache decode: %w", err)
	}
	return bills, true, nil
}

func (c *BillCache) Set(ctx context.Context, email string, bills []domain.Bill) error {
	if bills == nil {
		bills = []domain.Bill{}
	}
	raw, err := json.Marshal(bills)
	if err != nil {
		return fmt.Errorf("bill cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(email), raw, c.ttl).Err()
}

// Invalidate drops the lists of the given owners. The empty email stands for
// the admin-wide list.
func (c *BillCache) Invalidate(ctx context.Context, emails ...string) error {
	if len(emails) == 0 {
		return nil
	}
	keys := make([]string, 0, len(emails))
	for _, e := range emails {
		keys = append(keys, c.key(e))
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *BillCache) key(email string) string {
	if email == "" {
		email = allBillsToken
	}
	return "bills:" + email
}
