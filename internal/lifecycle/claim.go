package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const claimKeyPrefix = "summary:claim:"

// Claimer arbitrates summarization of a session across agent replicas.
type Claimer interface {
	Claim(ctx context.Context, sessionID string) (bool, error)
}

type RedisClaimer struct {
	client *redis.Client
	owner  string
	ttl    time.Duration
}

// NewRedisClaimer stores owner as the claim value so an operator can see which replica summarized.
func NewRedisClaimer(client *redis.Client, owner string, ttl time.Duration) *RedisClaimer {
	return &RedisClaimer{client: client, owner: owner, ttl: ttl}
}

func (r *RedisClaimer) Claim(ctx context.Context, sessionID string) (bool, error) {
	ok, err := r.client.SetNX(ctx, claimKeyPrefix+sessionID, r.owner, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim summary for %s: %w", sessionID, err)
	}
	return ok, nil
}
