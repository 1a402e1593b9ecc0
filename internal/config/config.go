// Package config reads process settings from the environment. A .env file,
// when present, fills in variables that are not already set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/subosito/gotenv"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/backend"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/channel"
)

type Config struct {
	Env      string
	LogLevel string

	HTTPPort           string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64

	Channel channel.Config
	CartKey string
	AuthKey string

	Backend backend.Config

	// IdleAfter without a request marks the context inactive. Zero keeps it
	// active until shutdown.
	IdleAfter time.Duration
	Currency  string

	KafkaBrokers []string
	KafkaGroupID string
}

// Load reads envFile (ignored when missing) and then the environment.
// defaultPort differs between the storefront and the checkout process.
func Load(envFile, defaultPort string) (*Config, error) {
	if envFile != "" {
		if err := gotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		HTTPPort:           getEnv("HTTP_PORT", defaultPort),
		RequestTimeout:     30 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		MaxRequestBodySize: 1 << 20, // 1MB
		Channel: channel.Config{
			Driver:        getEnv("CHANNEL_DRIVER", "redis"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			MongoDBName:   getEnv("MONGO_DB", "farmachelo"),
			SQLDSN:        getEnv("CHANNEL_DSN", "file:farmachelo-channel.db"),
			Prefix:        getEnv("CHANNEL_PREFIX", "farmachelo"),
		},
		CartKey:      getEnv("CART_KEY", "cart"),
		AuthKey:      getEnv("AUTH_KEY", "auth"),
		Currency:     strings.ToUpper(getEnv("CURRENCY", "COP")),
		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "storefront-consumer"),
		Backend: backend.Config{
			BaseURL: getEnv("API_BASE_URL", "http://localhost:8000/api"),
		},
	}

	var err error
	if cfg.Channel.TTL, err = getDuration("CHANNEL_TTL", 0); err != nil {
		return nil, err
	}
	if cfg.IdleAfter, err = getDuration("IDLE_AFTER", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Backend.Timeout, err = getDuration("API_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Backend.BreakerTimeout, err = getDuration("API_BREAKER_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	failures, err := strconv.ParseUint(getEnv("API_BREAKER_FAILURES", "5"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("API_BREAKER_FAILURES: %w", err)
	}
	cfg.Backend.BreakerFailures = uint32(failures)

	return cfg, nil
}

// KafkaEnabled reports whether checkout events are exchanged at all.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
