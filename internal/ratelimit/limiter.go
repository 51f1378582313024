package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// ipLimitWindow bounds how many requests one address may make to the
	// email-sending and credential endpoints.
	ipLimitWindow = 15 * time.Minute
	ipLimitMax    = 10

	// emailCooldown is the minimum gap between outbound emails to one address.
	emailCooldown = 2 * time.Minute
)

// Limiter throttles abusive clients using Redis counters. All checks fail
// open: a Redis outage surfaces as an error the caller logs and ignores
// rather than locking everyone out.
type Limiter struct {
	client *redis.Client
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

func ipKey(ip, purpose string) string {
	if purpose == "" {
		return fmt.Sprintf("ratelimit:ip:%s", ip)
	}
	return fmt.Sprintf("ratelimit:ip:%s:%s", purpose, ip)
}

func emailKey(email string) string {
	return fmt.Sprintf("ratelimit:email:%s", email)
}

// CheckIPRateLimit reports whether the address has exhausted the shared
// request budget.
func (l *Limiter) CheckIPRateLimit(ctx context.Context, ip string) (bool, error) {
	return l.checkIP(ctx, ipKey(ip, ""))
}

// CheckIPRateLimitWithPurpose reports whether the address has exhausted the
// budget for one endpoint, keyed separately so login attempts do not eat the
// register budget.
func (l *Limiter) CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error) {
	return l.checkIP(ctx, ipKey(ip, purpose))
}

func (l *Limiter) checkIP(ctx context.Context, key string) (bool, error) {
	count, err := l.client.Get(ctx, key).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get rate limit counter: %w", err)
	}
	return count >= ipLimitMax, nil
}

// RecordIPRequest counts one request against the shared budget.
func (l *Limiter) RecordIPRequest(ctx context.Context, ip string) error {
	return l.recordIP(ctx, ipKey(ip, ""))
}

// RecordIPRequestWithPurpose counts one request against a per-endpoint budget.
func (l *Limiter) RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error {
	return l.recordIP(ctx, ipKey(ip, purpose))
}

func (l *Limiter) recordIP(ctx context.Context, key string) error {
	pipe := l.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ipLimitWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}
	return nil
}

// CheckEmailCooldown reports whether an email was sent to the address too
// recently.
func (l *Limiter) CheckEmailCooldown(ctx context.Context, email string) (bool, error) {
	exists, err := l.client.Exists(ctx, emailKey(email)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check email cooldown: %w", err)
	}
	return exists > 0, nil
}

// SetEmailCooldown starts the cooldown window for the address.
func (l *Limiter) SetEmailCooldown(ctx context.Context, email string) error {
	if err := l.client.Set(ctx, emailKey(email), "1", emailCooldown).Err(); err != nil {
		return fmt.Errorf("failed to set email cooldown: %w", err)
	}
	return nil
}
