package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config конфигурация приложения
type Config struct {
	ServerPort           string `mapstructure:"server_port"`
	DBPath               string `mapstructure:"db_path"`
	ModelPath            string `mapstructure:"model_path"`
	RedisAddr            string `mapstructure:"redis_addr"`
	RedisPassword        string `mapstructure:"redis_password"`
	RedisDB              int    `mapstructure:"redis_db"`
	ModelCacheTTLMinutes int    `mapstructure:"model_cache_ttl_minutes"`
	SimulateDefaultCount int    `mapstructure:"simulate_default_count"`
	SimulateMaxCount     int    `mapstructure:"simulate_max_count"`
	LogLevel             string `mapstructure:"log_level"`
	LogFormat            string `mapstructure:"log_format"`
}

// ModelCacheTTL время жизни модели в Redis
func (c Config) ModelCacheTTL() time.Duration {
	return time.Duration(c.ModelCacheTTLMinutes) * time.Minute
}

// CacheEnabled Redis настроен
func (c Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

var defaults = map[string]interface{}{
	"server_port":             "8080",
	"db_path":                 "iot_maintenance.db",
	"model_path":              "iot_maintenance_model.json",
	"redis_addr":              "",
	"redis_password":          "",
	"redis_db":                0,
	"model_cache_ttl_minutes": 60,
	"simulate_default_count":  10,
	"simulate_max_count":      10000,
	"log_level":               "info",
	"log_format":              "text",
}

// Load читает конфигурацию: значения по умолчанию, затем файл (если задан),
// затем переменные окружения (SERVER_PORT, DB_PATH, ...).
func Load(configFile string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if configFile == "" {
		configFile = v.GetString("config_file")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	if c.ServerPort == "" {
		c.ServerPort = defaults["server_port"].(string)
	}
	if c.DBPath == "" {
		return errors.New("db_path must not be empty")
	}
	if c.ModelPath == "" {
		return errors.New("model_path must not be empty")
	}
	if c.ModelCacheTTLMinutes <= 0 {
		c.ModelCacheTTLMinutes = defaults["model_cache_ttl_minutes"].(int)
	}
	if c.SimulateDefaultCount < 0 {
		c.SimulateDefaultCount = defaults["simulate_default_count"].(int)
	}
	if c.SimulateMaxCount <= 0 {
		c.SimulateMaxCount = defaults["simulate_max_count"].(int)
	}
	if c.SimulateDefaultCount > c.SimulateMaxCount {
		return fmt.Errorf("simulate_default_count %d exceeds simulate_max_count %d", c.SimulateDefaultCount, c.SimulateMaxCount)
	}
	return nil
}
