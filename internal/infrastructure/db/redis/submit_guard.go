package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SubmitGuard reserves a draft for a single submission so a double click or a
// replayed form post is rejected.
// Key format: submit:<bill_id>
type SubmitGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSubmitGuard(client *redis.Client, ttl time.Duration) *SubmitGuard {
	return &SubmitGuard{client: client, ttl: ttl}
}

// Claim reserves billID with SET NX. It reports false when the bill is
// already claimed. The claim expires after ttl.
func (g *SubmitGuard) Claim(ctx context.Context, billID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(billID), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("submit guard claim: %w", err)
	}
	return ok, nil
}

// Release drops the claim on billID so the submission can be retried.
func (g *SubmitGuard) Release(ctx context.Context, billID string) error {
	if err := g.client.Del(ctx, g.key(billID)).Err(); err != nil {
		return fmt.Errorf("submit guard release: %w", err)
	}
	return nil
}

func (g *SubmitGuard) key(billID string) string {
	return "submit:" + billID
}
