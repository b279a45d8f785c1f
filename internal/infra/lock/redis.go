package lock

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// releaseScript deletes the key only while it still carries our token, so an
// expired lock taken over by someone else is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Redis is a lease lock shared by every API instance pointing at the same
// Redis. The TTL bounds how long a crashed holder blocks others.
type Redis struct {
	client *redis.Client
	log    *zap.Logger
	prefix string
	ttl    time.Duration
	wait   time.Duration
}

func NewRedis(client *redis.Client, log *zap.Logger, ttl, wait time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if wait <= 0 {
		wait = defaultWait
	}
	return &Redis{client: client, log: log, prefix: "lock:", ttl: ttl, wait: wait}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	k := r.prefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(r.wait)

	for {
		ok, err := r.client.SetNX(ctx, k, token, r.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() { r.release(k, token) }, nil
		}

		if time.Now().After(deadline) {
			return nil, ErrNotAcquired
		}

		select {
		case <-time.After(retryBackoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// release runs on a fresh context: the caller's may already be done. A failed
// release keeps the key busy until the TTL runs out.
func (r *Redis) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	n, err := releaseScript.Run(ctx, r.client, []string{key}, token).Int()
	switch {
	case err != nil:
		r.log.Warn("failed to release lock", zap.String("key", key), zap.Duration("ttl", r.ttl), zap.Error(err))
	case n == 0:
		r.log.Warn("lock lease expired before release", zap.String("key", key))
	}
}
