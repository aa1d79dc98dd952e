// Package locks provides short-lived named locks shared between instances.
package locks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ReleaseFunc gives a lock back.
type ReleaseFunc func(ctx context.Context) error

// Locker hands out named locks. ok is false when another holder has the lock.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release ReleaseFunc, ok bool, err error)
}

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// Redis implements Locker with SET NX and a token-checked delete.
type Redis struct {
	Client redis.UniversalClient
	Prefix string
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{Client: client, Prefix: "lock:"}
}

// Connect builds a redis client from a redis:// URL or a host:port address.
func Connect(addr, password string) (*redis.Client, error) {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password}), nil
}

func (r *Redis) Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, bool, error) {
	full := r.Prefix + key
	token := uuid.New().String()

	ok, err := r.Client.SetNX(ctx, full, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, r.Client, []string{full}, token).Err(); err != nil {
			return fmt.Errorf("release lock %s: %w", key, err)
		}
		return nil
	}
	return release, true, nil
}

// Noop grants every lock. It is used when no redis is configured; the
// storage version checks still keep the data correct.
type Noop struct{}

func (Noop) Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, bool, error) {
	return func(context.Context) error { return nil }, true, nil
}
