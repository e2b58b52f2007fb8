package wizard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/salon-booking/internal/booking"
	"github.com/wolfman30/salon-booking/pkg/logging"
)

// DefaultSubmitLockTTL bounds how long a crashed instance can hold a permit.
const DefaultSubmitLockTTL = 60 * time.Second

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard is a booking.Guard shared by every API instance.
type RedisGuard struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewRedisGuard creates a Redis-backed submit guard. ttl <= 0 uses
// DefaultSubmitLockTTL.
func NewRedisGuard(client *redis.Client, ttl time.Duration, logger *logging.Logger) *RedisGuard {
	if client == nil {
		panic("wizard: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultSubmitLockTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisGuard{redis: client, ttl: ttl, logger: logger}
}

// TryAcquire implements booking.Guard with SET NX PX.
func (g *RedisGuard) TryAcquire(ctx context.Context, key string) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := g.redis.SetNX(ctx, guardKey(key), token, g.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("wizard: acquire submit lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			// Release must run even when the request context was cancelled.
			rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(rctx, g.redis, []string{guardKey(key)}, token).Err(); err != nil {
				g.logger.Warn("submit lock release failed", "key", key, "error", err)
			}
		})
	}
	return release, true, nil
}

// Held implements booking.Guard.
func (g *RedisGuard) Held(ctx context.Context, key string) (bool, error) {
	n, err := g.redis.Exists(ctx, guardKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("wizard: check submit lock: %w", err)
	}
	return n > 0, nil
}

func guardKey(key string) string {
	return fmt.Sprintf("booking:submit:%s", key)
}

var _ booking.Guard = (*RedisGuard)(nil)
