package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.DBPath != "iot_maintenance.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.ModelPath != "iot_maintenance_model.json" {
		t.Errorf("ModelPath = %q", cfg.ModelPath)
	}
	if cfg.CacheEnabled() {
		t.Error("cache should be disabled without REDIS_ADDR")
	}
	if cfg.ModelCacheTTL() != time.Hour {
		t.Errorf("ModelCacheTTL = %v, want 1h", cfg.ModelCacheTTL())
	}
	if cfg.SimulateDefaultCount != 10 {
		t.Errorf("SimulateDefaultCount = %d, want 10", cfg.SimulateDefaultCount)
	}
	if cfg.SimulateMaxCount != 10000 {
		t.Errorf("SimulateMaxCount = %d, want 10000", cfg.SimulateMaxCount)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("log settings = %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("MODEL_CACHE_TTL_MINUTES", "5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.DBPath != "/tmp/x.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if !cfg.CacheEnabled() || cfg.RedisDB != 3 {
		t.Errorf("redis settings = %q db %d", cfg.RedisAddr, cfg.RedisDB)
	}
	if cfg.ModelCacheTTL() != 5*time.Minute {
		t.Errorf("ModelCacheTTL = %v", cfg.ModelCacheTTL())
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server_port: \"7000\"\nmodel_path: models/current.json\nsimulate_default_count: 25\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	t.Setenv("SERVER_PORT", "7001")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// окружение важнее файла
	if cfg.ServerPort != "7001" {
		t.Errorf("ServerPort = %q, want env value 7001", cfg.ServerPort)
	}
	if cfg.ModelPath != "models/current.json" {
		t.Errorf("ModelPath = %q", cfg.ModelPath)
	}
	if cfg.SimulateDefaultCount != 25 {
		t.Errorf("SimulateDefaultCount = %d", cfg.SimulateDefaultCount)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_InvalidNumber(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	if _, err := Load(""); err == nil {
		t.Error("expected error for non-numeric REDIS_DB")
	}
}

func TestLoad_DefaultCountAboveMax(t *testing.T) {
	t.Setenv("SIMULATE_DEFAULT_COUNT", "50")
	t.Setenv("SIMULATE_MAX_COUNT", "20")

	if _, err := Load(""); err == nil {
		t.Error("expected error when default count exceeds max count")
	}
}
