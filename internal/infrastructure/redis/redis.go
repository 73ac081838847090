package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dulanjanabandara/job-recommender-system/internal/logger"
)

var ErrUnsupportedURL = errors.New("redis url must use the redis:// or rediss:// scheme")

const (
	connectAttempts = 3
	retryInterval   = 2 * time.Second
)

// Open parses url, applies pool settings and pings the server, retrying with
// linear backoff.
func Open(ctx context.Context, url string) (redis.UniversalClient, error) {
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, ErrUnsupportedURL
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.ConnMaxIdleTime = 10 * time.Minute
	opts.ReadTimeout = time.Second
	opts.WriteTimeout = time.Second
	opts.DialTimeout = 5 * time.Second

	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		client := redis.NewClient(opts)

		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			logger.Info("Redis connection established", zap.String("addr", opts.Addr))
			return client, nil
		}
		_ = client.Close()

		logger.Warn("Redis ping failed",
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * retryInterval):
		}
	}

	return nil, fmt.Errorf("failed to connect to redis: %w", lastErr)
}
