package cache

import (
	"context"
	"testing"
	"time"

	"jobmatch/internal/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedis_BypassWhenUnavailable(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r := NewRedis(config.RedisConfig{Host: "127.0.0.1", Port: "1"}, zap.New(core))

	assert.False(t, r.Available())
	assert.Equal(t, 1, logs.FilterMessage("redis unavailable, bypassing cache").Len())

	ctx := context.Background()
	require.Error(t, r.Ping(ctx))

	var out map[string]string
	hit, err := r.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, r.SetJSON(ctx, "k", map[string]string{"a": "b"}, time.Minute))
	require.NoError(t, r.Delete(ctx, "k"))
	require.NoError(t, r.DeleteByPattern(ctx, "k*"))
	require.NoError(t, r.InvalidateClaimantMatches(ctx, uuid.New()))
	require.NoError(t, r.InvalidateAllMatches(ctx))

	ok, err := r.SetIfNotExists(ctx, "lock", "1", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, r.Close())
}

func TestRedis_NilReceiver(t *testing.T) {
	var r *Redis
	assert.False(t, r.Available())
	hit, err := r.GetJSON(context.Background(), "k", &struct{}{})
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestKeys(t *testing.T) {
	id := uuid.MustParse("0190a6d2-7b1c-7000-8000-000000000001")
	assert.Equal(t, "matches:claimant:0190a6d2-7b1c-7000-8000-000000000001:0:20", MatchListKey(id, 0, 20))
	assert.Equal(t, "ingest:lock:python developer:london", IngestLockKey(" Python Developer ", "London"))
}

func TestRedis_DefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultTTL, NewRedisFromClient(nil, 0, nil).defaultTTL())
	assert.Equal(t, time.Minute, NewRedisFromClient(nil, time.Minute, nil).defaultTTL())
}
