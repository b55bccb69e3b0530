package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func TestRedisClaimer_UnreachableReturnsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	claimed, err := NewRedisClaimer(client, "agent-1", time.Minute).Claim(context.Background(), "room-42")
	assert.Error(t, err)
	assert.False(t, claimed)
	assert.Contains(t, err.Error(), "claim summary for room-42")
}
