package otpinfra

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fundora/fundora/pkg/errx"
)

// RedisLimiter backs otp.Limiter with Redis so attempt counters and issuance
// cooldowns survive restarts and are shared across instances.
type RedisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

func (l *RedisLimiter) IncrAttempts(ctx context.Context, key string, ttl time.Duration) (int, error) {
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	// NX keeps the original deadline: the counter dies with the challenge
	// window it guards, not ttl after the latest mismatch.
	pipe.ExpireNX(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, errx.Wrap(err, "failed to increment attempt counter", errx.TypeInternal)
	}
	return int(incr.Val()), nil
}

func (l *RedisLimiter) ClearAttempts(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, key).Err(); err != nil {
		return errx.Wrap(err, "failed to clear attempt counter", errx.TypeInternal)
	}
	return nil
}

func (l *RedisLimiter) MarkIssued(ctx context.Context, key string, cooldown time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, key, time.Now().Unix(), cooldown).Result()
	if err != nil {
		return false, errx.Wrap(err, "failed to record OTP issuance", errx.TypeInternal)
	}
	return ok, nil
}
