package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iot-maintenance/internal/config"
	"iot-maintenance/internal/handlers"
	"iot-maintenance/internal/logging"
	"iot-maintenance/internal/service"
	"iot-maintenance/internal/wire"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))

	slog.Info("Starting IoT Predictive Maintenance Service...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := wire.Build(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.Close()
	slog.Info("storage ready", "db_path", cfg.DBPath, "model_path", cfg.ModelPath)

	var modelCache handlers.Cache
	if app.Redis != nil {
		modelCache = app.Redis
	}
	handler := handlers.NewHandler(app.Service, app.Records, modelCache)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second, // обучение идет в рамках запроса
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	// Периодическое обновление метрик
	go updateMetrics(ctx, app.Service)

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("Server stopped gracefully")
}

// updateMetrics периодически сверяет gauge записей с базой
func updateMetrics(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		if err := svc.RefreshRecordGauge(ctx); err != nil && ctx.Err() == nil {
			slog.Warn("failed to refresh record gauge", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
