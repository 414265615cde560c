// Package wire собирает зависимости сервиса из конфигурации.
package wire

import (
	"context"
	"fmt"
	"log/slog"

	"iot-maintenance/internal/analytics"
	"iot-maintenance/internal/cache"
	"iot-maintenance/internal/config"
	"iot-maintenance/internal/service"
	"iot-maintenance/internal/storage"
)

// App готовые к работе компоненты
type App struct {
	Records    *storage.RecordStore
	ModelStore analytics.ModelStore
	Redis      *cache.RedisCache // nil, если кэш не настроен
	Service    *service.Service
}

// Build открывает хранилища и создает сервис
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	records, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	app := &App{Records: records}

	var modelStore analytics.ModelStore = analytics.NewFileModelStore(cfg.ModelPath)
	if cfg.CacheEnabled() {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.ModelCacheTTL())
		if err != nil {
			records.Close()
			return nil, fmt.Errorf("model cache: %w", err)
		}
		app.Redis = redisCache
		modelStore = cache.NewModelCache(modelStore, redisCache)
		slog.Info("model cache enabled", "redis_addr", cfg.RedisAddr, "ttl", cfg.ModelCacheTTL())
	}
	app.ModelStore = modelStore

	app.Service = service.New(records, modelStore,
		service.WithDefaultCount(cfg.SimulateDefaultCount),
		service.WithMaxCount(cfg.SimulateMaxCount),
	)
	return app, nil
}

// Close освобождает соединения
func (a *App) Close() error {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			slog.Warn("failed to close redis", "error", err)
		}
	}
	return a.Records.Close()
}
