package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"careerhub/internal/config"
)

var ErrUnavailable = errors.New("redis unavailable")

type Redis struct {
	client *redis.Client
	logger *logrus.Logger
	ttl    time.Duration

	warnedUnavailable atomic.Bool
}

// NewRedis pings the server once. When it cannot be reached the returned
// cache is a no-op and callers fall through to the database.
func NewRedis(cfg config.RedisConfig, logger *logrus.Logger) *Redis {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 600 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		if logger != nil {
			logger.WithError(err).Warn("redis unavailable, bypassing cache")
		}
		_ = client.Close()
		return &Redis{logger: logger, ttl: ttl}
	}

	return &Redis{client: client, logger: logger, ttl: ttl}
}

// Available is false when the server could not be reached at startup.
func (r *Redis) Available() bool {
	return r != nil && r.client != nil
}

func (r *Redis) DefaultTTL() time.Duration {
	if r == nil || r.ttl <= 0 {
		return 600 * time.Second
	}
	return r.ttl
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r == nil || r.logger == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.WithError(err).Warn("redis command failed, bypassing cache")
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	if !r.Available() {
		return ErrUnavailable
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if !r.Available() {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if !r.Available() {
		return false, nil
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.warnUnavailableOnce(err)
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !r.Available() {
		return nil
	}
	if ttl <= 0 {
		ttl = r.DefaultTTL()
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, b, ttl).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if !r.Available() {
		return nil
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) DeleteByPattern(ctx context.Context, pattern string) error {
	if !r.Available() {
		return nil
	}
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}
	iter := r.client.Scan(ctx, 0, pattern, 200).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if err := r.client.Del(ctx, k).Err(); err != nil && r.logger != nil {
			r.logger.WithError(err).WithFields(logrus.Fields{"key": k, "pattern": pattern}).Warn("redis delete failed")
		}
	}
	return iter.Err()
}

// Keys scans for keys matching pattern. Meant for small per-user key spaces.
func (r *Redis) Keys(ctx context.Context, pattern string) ([]string, error) {
	if !r.Available() {
		return nil, ErrUnavailable
	}
	var out []string
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.warnUnavailableOnce(err)
		return nil, err
	}
	return out, nil
}

func (r *Redis) SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	if !r.Available() {
		return false, nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		r.warnUnavailableOnce(err)
		return false, err
	}
	return ok, nil
}

// Incr bumps an integer counter. The key never expires.
func (r *Redis) Incr(ctx context.Context, key string) (int64, error) {
	if !r.Available() {
		return 0, nil
	}
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		r.warnUnavailableOnce(err)
		return 0, err
	}
	return n, nil
}
