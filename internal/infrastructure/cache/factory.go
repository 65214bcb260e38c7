package cache

import (
	"context"
	"fmt"

	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopkeeper/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// LockerFactory creates session lockers based on configuration
type LockerFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LockerFactoryOption is a functional option for configuring the factory
type LockerFactoryOption func(*LockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory locker
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLockerFactory creates a new factory
func NewLockerFactory(cfg config.RedisConfig, opts ...LockerFactoryOption) *LockerFactory {
	f := &LockerFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a Redis locker when Redis is enabled and reachable.
// Otherwise it falls back to an in-memory locker if allowed.
func (f *LockerFactory) Create(ctx context.Context) (shared.Locker, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory session locker")
		return NewInMemoryLocker(), nil
	}

	locker, err := NewRedisLocker(ctx, RedisConfig{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("Using Redis session locker", zap.String("addr", f.redisConfig.Addr()))
		return locker, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for session locking but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory session locker. "+
		"Concurrent finalize/commit on different instances will not be excluded.",
		zap.Error(err),
	)
	return NewInMemoryLocker(), nil
}
