// Package redislock implements keylock.Locker on Redis so guard checks hold across API instances.
package redislock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/commission-api/internal/config"
	"github.com/commission-api/internal/pkg/id"
	"github.com/commission-api/internal/pkg/keylock"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix    = "lock:"
	retryBackoff = 25 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

type client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Locker holds each key as a Redis string with a TTL. A crashed holder frees its keys when the TTL runs out.
type Locker struct {
	client client
	ttl    time.Duration
}

func NewClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func New(c client, ttl time.Duration) *Locker {
	return &Locker{client: c, ttl: ttl}
}

var _ keylock.Locker = (*Locker)(nil)

func (l *Locker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = keylock.Normalize(keys)
	token := id.New()
	held := make([]string, 0, len(keys))
	for _, k := range keys {
		if err := l.acquire(ctx, keyPrefix+k, token); err != nil {
			l.release(held, token)
			return nil, err
		}
		held = append(held, keyPrefix+k)
	}
	var once sync.Once
	return func() { once.Do(func() { l.release(held, token) }) }, nil
}

func (l *Locker) acquire(ctx context.Context, key, token string) error {
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBackoff):
		}
	}
}

// release runs on its own context so a cancelled request still frees its keys.
func (l *Locker) release(keys []string, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), l.ttl)
	defer cancel()
	for i := len(keys) - 1; i >= 0; i-- {
		n, err := l.client.Eval(ctx, releaseScript, []string{keys[i]}, token).Int()
		if err != nil {
			slog.Error("release lock failed", "key", keys[i], "err", err)
			continue
		}
		if n == 0 {
			slog.Warn("lock expired before release", "key", keys[i])
		}
	}
}
