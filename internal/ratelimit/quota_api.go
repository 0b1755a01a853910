package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/paperflow/internal/config"
)

const (
	keyQuotaAPITenant = "quota:api:tenant:%d"
	keyResetJobLock   = "quota:reset:lock"
)

// QuotaAPILimiter throttles the per-tenant quota mutation endpoints. It also
// exposes a distributed lock so only one scheduler replica runs the monthly
// reset sweep at a time. A nil limiter (no redis configured) allows
// everything.
type QuotaAPILimiter struct {
	enabled bool

	bucket *TokenBucket
	locker *Locker

	rate  float64
	burst int
}

func NewQuotaAPILimiter(cfg config.Config) (*QuotaAPILimiter, error) {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})

	return &QuotaAPILimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		locker:  NewLocker(client),
		rate:    cfg.QuotaAPIRate,
		burst:   cfg.QuotaAPIBurst,
	}, nil
}

func (l *QuotaAPILimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *QuotaAPILimiter) AllowTenant(ctx context.Context, tenantID snowflake.ID) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyQuotaAPITenant, tenantID), l.rate, l.burst)
}

func (l *QuotaAPILimiter) TryLockResetSweep(ctx context.Context, ttl time.Duration) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, keyResetJobLock, ttl)
}

func (l *QuotaAPILimiter) ReleaseResetSweep(ctx context.Context, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.locker.Release(ctx, keyResetJobLock, token)
}
