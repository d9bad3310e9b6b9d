package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/r56149203/EduSphere/utils/cache"
)

// AttemptWindow is how long failed attempts keep counting towards a lockout
const AttemptWindow = 15 * time.Minute

// BruteForceProtection handles brute force protection using Redis.
// A nil cache disables it.
type BruteForceProtection struct {
	redisCache *cache.RedisCache
}

// NewBruteForceProtection creates a new brute force protection instance
func NewBruteForceProtection(redisCache *cache.RedisCache) *BruteForceProtection {
	return &BruteForceProtection{
		redisCache: redisCache,
	}
}

func attemptKey(ip string) string { return fmt.Sprintf("brute_force:attempts:%s", ip) }
func lockKey(ip string) string    { return fmt.Sprintf("brute_force:lock:%s", ip) }

// LockDuration returns how long an IP is locked after attempts failures
func LockDuration(attempts int64) time.Duration {
	switch {
	case attempts >= 25:
		// 25+ attempts: 24 hour lockout
		return 24 * time.Hour
	case attempts >= 10:
		// 10-24 attempts: 1 hour lockout
		return 1 * time.Hour
	case attempts >= 5:
		// 5-9 attempts: 2 minute lockout
		return 2 * time.Minute
	default:
		// Less than 5 attempts: no lockout yet
		return 0
	}
}

// CheckAndRecordAttempt rejects locked IPs through onLocked with the seconds left
func (b *BruteForceProtection) CheckAndRecordAttempt(onLocked func(c *fiber.Ctx, retryAfter int) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		retryAfter, locked := b.Locked(c.UserContext(), c.IP())
		if !locked {
			return c.Next()
		}

		c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", retryAfter))
		return onLocked(c, retryAfter)
	}
}

// Locked reports whether ip is locked out and for how many more seconds.
// Redis errors never lock anyone out.
func (b *BruteForceProtection) Locked(ctx context.Context, ip string) (int, bool) {
	if b == nil || b.redisCache == nil {
		return 0, false
	}

	left, locked, err := b.redisCache.Remaining(ctx, lockKey(ip))
	if err != nil || !locked {
		return 0, false
	}
	retryAfter := int(left.Seconds())
	if retryAfter <= 0 {
		retryAfter = 60 // Default to 60 seconds
	}
	return retryAfter, true
}

// RecordFailedAttempt records a failed login attempt and applies progressive lockouts
func (b *BruteForceProtection) RecordFailedAttempt(ctx context.Context, ip string) error {
	if b == nil || b.redisCache == nil {
		return nil
	}

	attempts, err := b.redisCache.Hit(ctx, attemptKey(ip), AttemptWindow)
	if err != nil {
		// If Redis is down, just return without blocking
		return nil
	}

	lockDuration := LockDuration(attempts)
	if lockDuration == 0 {
		return nil
	}
	return b.redisCache.Set(ctx, lockKey(ip), "locked", lockDuration)
}

// RecordSuccessfulAttempt clears failed attempts on successful login
func (b *BruteForceProtection) RecordSuccessfulAttempt(ctx context.Context, ip string) {
	if b == nil || b.redisCache == nil {
		return
	}
	b.redisCache.Delete(ctx, attemptKey(ip))
	b.redisCache.Delete(ctx, lockKey(ip))
}

// GetAttemptCount returns the current attempt count for an IP
func (b *BruteForceProtection) GetAttemptCount(ctx context.Context, ip string) (int, error) {
	if b == nil || b.redisCache == nil {
		return 0, nil
	}

	val, err := b.redisCache.Get(ctx, attemptKey(ip))
	if err != nil {
		if err == cache.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}

	var count int
	fmt.Sscanf(val, "%d", &count)
	return count, nil
}
