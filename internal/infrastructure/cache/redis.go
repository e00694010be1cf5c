package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"jobmatch/internal/config"
	"jobmatch/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultTTL = 600 * time.Second

// Redis is a best-effort cache. When the server cannot be reached at start
// every call turns into a no-op, so callers fall through to the store.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger

	warnedUnavailable atomic.Bool
}

func NewRedis(cfg config.RedisConfig, log *zap.Logger) *Redis {
	log = logger.Named(log, "cache")

	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "localhost"
	}
	port := strings.TrimSpace(cfg.Port)
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, bypassing cache", zap.Error(err))
		_ = client.Close()
		return &Redis{client: nil, ttl: cfg.TTL, logger: log}
	}

	return &Redis{client: client, ttl: cfg.TTL, logger: log}
}

// NewRedisFromClient wraps an existing client. A nil client yields a
// bypassing cache.
func NewRedisFromClient(client *redis.Client, ttl time.Duration, log *zap.Logger) *Redis {
	return &Redis{client: client, ttl: ttl, logger: logger.Named(log, "cache")}
}

func (r *Redis) isUnavailable() bool {
	return r == nil || r.client == nil
}

// Available reports whether calls reach a server.
func (r *Redis) Available() bool {
	return !r.isUnavailable()
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r == nil || r.logger == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Warn("redis unavailable, bypassing cache", zap.Error(err))
	}
}

func (r *Redis) defaultTTL() time.Duration {
	if r.ttl > 0 {
		return r.ttl
	}
	return DefaultTTL
}

func (r *Redis) Close() error {
	if r.isUnavailable() {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) Ping(ctx context.Context) error {
	if r.isUnavailable() {
		return errors.New("redis unavailable")
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if r.isUnavailable() {
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
	if r.isUnavailable() {
		return nil
	}
	if ttl <= 0 {
		ttl = r.defaultTTL()
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
	if r.isUnavailable() {
		return nil
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.isUnavailable() {
		return nil
	}
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if err := r.client.Del(ctx, k).Err(); err != nil {
			r.logger.Warn("redis delete failed", zap.String("key", k), zap.String("pattern", pattern), zap.Error(err))
		}
	}
	return iter.Err()
}

// SetIfNotExists reports whether the key was set. With no server it reports
// true so that locks degrade to "always acquired".
func (r *Redis) SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	if r.isUnavailable() {
		return true, nil
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

func MatchListKey(claimantID uuid.UUID, offset, limit int) string {
	return fmt.Sprintf("matches:claimant:%s:%d:%d", claimantID, offset, limit)
}

// InvalidateClaimantMatches drops every cached match page of the claimant.
func (r *Redis) InvalidateClaimantMatches(ctx context.Context, claimantID uuid.UUID) error {
	return r.DeleteByPattern(ctx, fmt.Sprintf("matches:claimant:%s:*", claimantID))
}

// InvalidateAllMatches drops the cached match pages of every claimant. Used
// when a posting embedded in those pages changes.
func (r *Redis) InvalidateAllMatches(ctx context.Context) error {
	return r.DeleteByPattern(ctx, "matches:claimant:*")
}

func IngestLockKey(query, location string) string {
	return "ingest:lock:" + strings.ToLower(strings.TrimSpace(query)) + ":" + strings.ToLower(strings.TrimSpace(location))
}
