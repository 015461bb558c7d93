// Package ratelimit ограничивает частоту запросов счётчиком с фиксированным окном в Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter описывает операции хранилища, нужные ограничителю.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, window time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Limiter пропускает не более limit запросов на ключ за окно window.
type Limiter struct {
	counter Counter
	limit   int
	window  time.Duration
}

// NewLimiter создаёт ограничитель поверх счётчика.
func NewLimiter(counter Counter, limit int, window time.Duration) *Limiter {
	return &Limiter{
		counter: counter,
		limit:   limit,
		window:  window,
	}
}

// Allow учитывает запрос и сообщает, укладывается ли он в лимит.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}

	count, err := l.counter.Incr(ctx, key)
	if err != nil {
		return false, fmt.Errorf("incr %s: %w", key, err)
	}

	if count == 1 {
		if err := l.counter.Expire(ctx, key, l.window); err != nil {
			return false, fmt.Errorf("expire %s: %w", key, err)
		}
	}

	if count <= int64(l.limit) {
		return true, nil
	}

	// Ключ сверх лимита всегда получает срок жизни, даже если EXPIRE первого запроса не прошёл.
	ttl, err := l.counter.TTL(ctx, key)
	if err != nil {
		return false, fmt.Errorf("ttl %s: %w", key, err)
	}
	if ttl < 0 {
		if err := l.counter.Expire(ctx, key, l.window); err != nil {
			return false, fmt.Errorf("expire %s: %w", key, err)
		}
	}

	return false, nil
}

// Key строит ключ счётчика для маршрута и клиента.
func Key(route, client string) string {
	return "rate_limit:" + route + ":" + client
}

// RedisCounter реализует Counter поверх go-redis.
type RedisCounter struct {
	cli *redis.Client
}

var _ Counter = (*RedisCounter)(nil)

// NewRedisCounter подключается к Redis и проверяет соединение.
func NewRedisCounter(ctx context.Context, addr, password string) (*RedisCounter, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCounter{cli: c}, nil
}

// Incr увеличивает счётчик ключа и возвращает новое значение.
func (c *RedisCounter) Incr(ctx context.Context, key string) (int64, error) {
	return c.cli.Incr(ctx, key).Result()
}

// Expire задаёт срок жизни ключа.
func (c *RedisCounter) Expire(ctx context.Context, key string, window time.Duration) error {
	return c.cli.Expire(ctx, key, window).Err()
}

// TTL возвращает оставшийся срок жизни ключа; отрицательное значение означает, что срок не задан.
func (c *RedisCounter) TTL(ctx context.Context, key string) (time.Duration, error) {
	return c.cli.TTL(ctx, key).Result()
}

// Close закрывает соединение с Redis.
func (c *RedisCounter) Close() error { return c.cli.Close() }
