package ratelimit

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// slidingWindow admits at most limit hits per key within any window of the
// given length. Hits live in a sorted set scored by their unix milliseconds.
type slidingWindow struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func newSlidingWindow(client *redis.Client, rate float64, burst int) *slidingWindow {
	if client == nil {
		return nil
	}
	return &slidingWindow{
		client: client,
		limit:  burst,
		window: windowLength(rate, burst),
	}
}

// windowLength is the span in which burst hits refill at rate per second.
func windowLength(rate float64, burst int) time.Duration {
	if rate <= 0 || burst <= 0 {
		return time.Second
	}
	ms := math.Ceil(float64(burst) / rate * 1000)
	return time.Duration(ms) * time.Millisecond
}

func (w *slidingWindow) hit(ctx context.Context, key string, now time.Time) (*RateLimitResult, error) {
	if w == nil || w.client == nil {
		return &RateLimitResult{}, errors.New("sliding window not configured")
	}
	if key == "" {
		return &RateLimitResult{}, errors.New("sliding window key is empty")
	}

	nowMs := now.UnixMilli()
	cutoff := strconv.FormatInt(nowMs-w.window.Milliseconds(), 10)
	member := uuid.NewString()

	var count *redis.IntCmd
	var oldest *redis.ZSliceCmd
	_, err := w.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZRemRangeByScore(ctx, key, "-inf", "("+cutoff)
		p.ZAdd(ctx, key, redis.Z{Score: float64(nowMs), Member: member})
		count = p.ZCard(ctx, key)
		oldest = p.ZRangeWithScores(ctx, key, 0, 0)
		p.PExpire(ctx, key, w.window)
		return nil
	})
	if err != nil {
		return &RateLimitResult{}, err
	}

	used := int(count.Val())
	if used <= w.limit {
		return &RateLimitResult{Allowed: true, Limit: w.limit, Remaining: w.limit - used}, nil
	}

	// over the limit: the rejected hit must not count against the member
	if err := w.client.ZRem(ctx, key, member).Err(); err != nil {
		return &RateLimitResult{}, err
	}
	var oldestMs int64
	if entries := oldest.Val(); len(entries) > 0 {
		oldestMs = int64(entries[0].Score)
	}
	return &RateLimitResult{
		Allowed:    false,
		Limit:      w.limit,
		RetryAfter: retryAfter(oldestMs, nowMs, w.window),
	}, nil
}

// retryAfter is the wait until the oldest hit leaves the window.
func retryAfter(oldestMs, nowMs int64, window time.Duration) time.Duration {
	if oldestMs <= 0 {
		return window
	}
	wait := time.Duration(oldestMs+window.Milliseconds()-nowMs) * time.Millisecond
	if wait < 0 {
		return 0
	}
	return wait
}
