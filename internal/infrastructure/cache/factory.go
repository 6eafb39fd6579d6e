package cache

import (
	"github.com/greetingsmith/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewStore returns a Redis store when Redis is enabled and reachable, and an
// in-memory store otherwise. An unreachable Redis is logged, not fatal:
// counters then apply per instance.
func NewStore(cfg config.RedisConfig, logger *zap.Logger) Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Info("Using in-memory cache store")
		return NewInMemoryStore()
	}

	store, err := NewRedisStore(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory cache store. "+
			"Rate limits and webhook deduplication will not be shared across instances.",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		return NewInMemoryStore()
	}

	logger.Info("Using Redis cache store", zap.String("addr", cfg.Addr()))
	return store
}
