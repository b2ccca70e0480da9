package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/civitas/internal/config"
	"go.uber.org/zap"
)

const (
	submissionKeyPrefix = "civitas:submit"
	settlementKeyPrefix = "civitas:settle"
)

// Guard throttles record submissions per member and serializes settlements
// per guild. A nil Guard allows everything, which is what single-instance
// deployments without Redis get.
type Guard struct {
	submissions *slidingWindow
	settlements *settlementLock
	clock       func() time.Time
}

func NewGuard(cfg config.Config, log *zap.Logger) (*Guard, error) {
	rl := cfg.RateLimit
	if !rl.Enabled {
		return nil, nil
	}
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, fmt.Errorf("rate limit enabled without REDIS_ADDR")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	log.Named("ratelimit").Info("redis guard enabled",
		zap.String("addr", addr),
		zap.Float64("submission_rate", rl.SubmissionRate),
		zap.Int("submission_burst", rl.SubmissionBurst),
	)
	return newGuard(client, rl), nil
}

func newGuard(client *redis.Client, rl config.RateLimitConfig) *Guard {
	rl = withDefaults(rl)
	if client == nil {
		return &Guard{clock: time.Now}
	}
	return &Guard{
		submissions: newSlidingWindow(client, rl.SubmissionRate, rl.SubmissionBurst),
		settlements: &settlementLock{client: client, ttl: rl.SettlementLockTTL},
		clock:       time.Now,
	}
}

func withDefaults(rl config.RateLimitConfig) config.RateLimitConfig {
	if rl.SubmissionRate <= 0 {
		rl.SubmissionRate = 0.5
	}
	if rl.SubmissionBurst <= 0 {
		rl.SubmissionBurst = 5
	}
	if rl.SettlementLockTTL <= 0 {
		rl.SettlementLockTTL = 30 * time.Second
	}
	return rl
}

func (g *Guard) Enabled() bool {
	return g != nil && g.submissions != nil
}

// AllowSubmission records one submission for the member in the guild.
func (g *Guard) AllowSubmission(ctx context.Context, guildID, actorID string) (*RateLimitResult, error) {
	if !g.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	return g.submissions.hit(ctx, submissionKey(guildID, actorID), g.clock())
}

// LockSettlement takes the guild-wide settlement lock. ok is false when
// another settlement holds it.
func (g *Guard) LockSettlement(ctx context.Context, guildID string) (token string, ok bool, err error) {
	if !g.Enabled() {
		return "", true, nil
	}
	return g.settlements.acquire(ctx, settlementKey(guildID))
}

func (g *Guard) ReleaseSettlement(ctx context.Context, guildID, token string) error {
	if !g.Enabled() {
		return nil
	}
	return g.settlements.release(ctx, settlementKey(guildID), token)
}

func submissionKey(guildID, actorID string) string {
	return fmt.Sprintf("%s:%s:%s", submissionKeyPrefix, guildID, actorID)
}

func settlementKey(guildID string) string {
	return fmt.Sprintf("%s:%s", settlementKeyPrefix, guildID)
}
