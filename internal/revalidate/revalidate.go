// Package revalidate доставляет сигналы «страница path устарела» кэшу фронтенда.
package revalidate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/go-threads/pkg/log"
	"github.com/redis/go-redis/v9"
)

// RedisNotifier публикует путь в Redis-канал; фронтенд подписан на него.
type RedisNotifier struct {
	rdb     *redis.Client
	channel string
}

// NewRedisNotifier создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если channel пустой — используется "threads:revalidate".
func NewRedisNotifier(ctx context.Context, redisURL, channel string) (*RedisNotifier, error) {
	if channel == "" {
		channel = "threads:revalidate"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("revalidate: parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("revalidate: redis ping: %w", err)
	}

	return &RedisNotifier{rdb: rdb, channel: channel}, nil
}

// Revalidate публикует path; число подписчиков пишется в debug-лог.
func (n *RedisNotifier) Revalidate(ctx context.Context, path string) error {
	const op = "revalidate/RedisNotifier.Revalidate"

	receivers, err := n.rdb.Publish(ctx, n.channel, path).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Debug("revalidate published",
		slog.String("channel", n.channel),
		slog.String("path", path),
		slog.Int64("receivers", receivers),
	)

	return nil
}

// Ping — проверка доступности Redis для /healthz.
func (n *RedisNotifier) Ping(ctx context.Context) error {
	return n.rdb.Ping(ctx).Err()
}

// Close закрывает клиент Redis.
func (n *RedisNotifier) Close() error {
	return n.rdb.Close()
}

// LogNotifier только логирует сигналы; используется, когда Redis не настроен.
type LogNotifier struct{}

func (LogNotifier) Revalidate(ctx context.Context, path string) error {
	log.From(ctx).Info("revalidate", slog.String("path", path))
	return nil
}
