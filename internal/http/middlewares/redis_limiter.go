package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// RedisLimiter counts requests in fixed windows shared by every API instance.
type RedisLimiter struct {
	client rueidis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client rueidis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	windowID := l.now().UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, windowID)

	count, err := l.client.Do(ctx, l.client.B().Incr().Key(redisKey).Build()).AsInt64()
	if err != nil {
		return false, err
	}

	if count == 1 {
		expire := l.client.B().Expire().Key(redisKey).Seconds(int64(l.window / time.Second)).Build()
		if err := l.client.Do(ctx, expire).Error(); err != nil {
			return false, err
		}
	}

	return count <= int64(l.limit), nil
}
