package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/civitas/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewGuardDisabled(t *testing.T) {
	g, err := NewGuard(config.Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, g)
	assert.False(t, g.Enabled())

	res, err := g.AllowSubmission(context.Background(), "g-1", "u-1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	token, ok, err := g.LockSettlement(context.Background(), "g-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, token)
	assert.NoError(t, g.ReleaseSettlement(context.Background(), "g-1", token))
}

func TestNewGuardRequiresRedis(t *testing.T) {
	_, err := NewGuard(config.Config{RateLimit: config.RateLimitConfig{Enabled: true}}, zap.NewNop())
	assert.Error(t, err)
}

func TestGuardDefaults(t *testing.T) {
	rl := withDefaults(config.RateLimitConfig{})
	assert.Equal(t, 0.5, rl.SubmissionRate)
	assert.Equal(t, 5, rl.SubmissionBurst)
	assert.Equal(t, 30*time.Second, rl.SettlementLockTTL)

	rl = withDefaults(config.RateLimitConfig{SubmissionRate: 2, SubmissionBurst: 3, SettlementLockTTL: time.Minute})
	assert.Equal(t, 2.0, rl.SubmissionRate)
	assert.Equal(t, 3, rl.SubmissionBurst)
	assert.Equal(t, time.Minute, rl.SettlementLockTTL)

	g := newGuard(nil, config.RateLimitConfig{})
	assert.False(t, g.Enabled())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "civitas:submit:g-1:u-1", submissionKey("g-1", "u-1"))
	assert.Equal(t, "civitas:settle:g-1", settlementKey("g-1"))
}

func TestWindowLength(t *testing.T) {
	assert.Equal(t, 10*time.Second, windowLength(0.5, 5))
	assert.Equal(t, 1500*time.Millisecond, windowLength(2, 3))
	assert.Equal(t, time.Second, windowLength(0, 5))
}

func TestRetryAfter(t *testing.T) {
	window := 10 * time.Second
	assert.Equal(t, window, retryAfter(0, 5_000, window))
	assert.Equal(t, 4*time.Second, retryAfter(1_000, 7_000, window))
	assert.Zero(t, retryAfter(1_000, 20_000, window))
}

func TestUnconfiguredPrimitives(t *testing.T) {
	var w *slidingWindow
	res, err := w.hit(context.Background(), "k", time.Now())
	assert.Error(t, err)
	assert.False(t, res.Allowed)
	assert.Nil(t, newSlidingWindow(nil, 1, 1))

	var l *settlementLock
	_, ok, err := l.acquire(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.NoError(t, l.release(context.Background(), "k", "t"))
}
