package cache

import (
	"context"
	"log/slog"

	"iot-maintenance/internal/analytics"
	"iot-maintenance/internal/metrics"
)

// ModelCache кэширует модель в Redis поверх основного хранилища.
// Источник истины остается в основном хранилище; ошибки Redis только логируются.
type ModelCache struct {
	store analytics.ModelStore
	redis *RedisCache
}

// NewModelCache оборачивает хранилище модели кэшем
func NewModelCache(store analytics.ModelStore, redis *RedisCache) *ModelCache {
	return &ModelCache{store: store, redis: redis}
}

// Load отдает модель из кэша, при промахе читает хранилище и заполняет кэш
func (c *ModelCache) Load(ctx context.Context) (*analytics.LogisticModel, error) {
	model, err := c.redis.LoadModel(ctx)
	switch {
	case err != nil:
		metrics.ModelCacheOperations.WithLabelValues("load", "error").Inc()
		slog.Warn("model cache read failed", "error", err)
	case model != nil:
		metrics.ModelCacheOperations.WithLabelValues("load", "hit").Inc()
		return model, nil
	default:
		metrics.ModelCacheOperations.WithLabelValues("load", "miss").Inc()
	}

	model, err = c.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	c.fill(ctx, model)
	return model, nil
}

// Save пишет модель в хранилище, затем обновляет кэш
func (c *ModelCache) Save(ctx context.Context, model *analytics.LogisticModel) error {
	if err := c.store.Save(ctx, model); err != nil {
		return err
	}

	if err := c.redis.StoreModel(ctx, model); err != nil {
		metrics.ModelCacheOperations.WithLabelValues("store", "error").Inc()
		slog.Warn("model cache write failed, invalidating", "error", err)
		// устаревшая модель в кэше хуже промаха
		if err := c.redis.InvalidateModel(ctx); err != nil {
			slog.Error("model cache invalidation failed", "error", err)
		}
		return nil
	}
	metrics.ModelCacheOperations.WithLabelValues("store", "success").Inc()
	return nil
}

func (c *ModelCache) fill(ctx context.Context, model *analytics.LogisticModel) {
	if err := c.redis.StoreModel(ctx, model); err != nil {
		metrics.ModelCacheOperations.WithLabelValues("fill", "error").Inc()
		slog.Warn("model cache fill failed", "error", err)
		return
	}
	metrics.ModelCacheOperations.WithLabelValues("fill", "success").Inc()
}

var _ analytics.ModelStore = (*ModelCache)(nil)
