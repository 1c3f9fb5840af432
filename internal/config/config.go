package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// Config holds runtime configuration values for the Wanderfolio backend.
type Config struct {
	DBPath            string
	ServerPort        int
	LogLevel          string
	AdminPasscode     string
	StorageBucket     string
	StorageRegion     string
	StorageEndpoint   string
	StoragePublicURL  string
	LLMEndpoint       string
	LLMAPIKey         string
	LLMModel          string
	CategorizeTimeout time.Duration
	SentryDSN         string
	Environment       string
	ShutdownGrace     time.Duration
	RateLimit         RateLimitConfig
}

// RateLimitConfig bounds request rates on the admin endpoint.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	ClientTTL         time.Duration
}

const (
	defaultDBPath             = "./data/wanderfolio.db"
	defaultServerPort         = 8080
	defaultLogLevel           = "info"
	defaultEnvironment        = "development"
	defaultStorageRegion      = "us-east-1"
	defaultLLMModel           = "openai/gpt-4o-mini"
	defaultCategorizeTimeout  = 30 * time.Second
	defaultShutdownGrace      = 10 * time.Second
	defaultRateLimitRPS       = 5.0
	defaultRateLimitBurst     = 10
	defaultRateLimitClientTTL = 5 * time.Minute
)

// Load reads configuration values from environment variables, applying
// defaults where necessary. The admin passcode and storage bucket have no
// fallback and must be set explicitly.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:            getEnv("DB_PATH", defaultDBPath),
		LogLevel:          getEnv("LOG_LEVEL", defaultLogLevel),
		AdminPasscode:     os.Getenv("ADMIN_PASSCODE"),
		StorageBucket:     os.Getenv("STORAGE_BUCKET"),
		StorageRegion:     getEnv("STORAGE_REGION", defaultStorageRegion),
		StorageEndpoint:   os.Getenv("STORAGE_ENDPOINT"),
		StoragePublicURL:  os.Getenv("STORAGE_PUBLIC_URL"),
		LLMEndpoint:       os.Getenv("LLM_ENDPOINT"),
		LLMAPIKey:         os.Getenv("LLM_API_KEY"),
		LLMModel:          getEnv("LLM_MODEL", defaultLLMModel),
		CategorizeTimeout: defaultCategorizeTimeout,
		SentryDSN:         os.Getenv("SENTRY_DSN"),
		Environment:       getEnv("ENV", defaultEnvironment),
		ShutdownGrace:     defaultShutdownGrace,
		RateLimit: RateLimitConfig{
			RequestsPerSecond: defaultRateLimitRPS,
			Burst:             defaultRateLimitBurst,
			ClientTTL:         defaultRateLimitClientTTL,
		},
	}

	if cfg.AdminPasscode == "" {
		return nil, eris.New("ADMIN_PASSCODE must be set")
	}

	if cfg.StorageBucket == "" {
		return nil, eris.New("STORAGE_BUCKET must be set")
	}

	portValue := getEnv("SERVER_PORT", strconv.Itoa(defaultServerPort))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid SERVER_PORT value: %s", portValue)
	}
	cfg.ServerPort = port

	if raw := os.Getenv("CATEGORIZE_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid CATEGORIZE_TIMEOUT value: %s", raw)
		}
		cfg.CategorizeTimeout = timeout
	}

	if raw := os.Getenv("RATE_LIMIT_RPS"); raw != "" {
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid RATE_LIMIT_RPS value: %s", raw)
		}
		cfg.RateLimit.RequestsPerSecond = rps
	}

	if raw := os.Getenv("RATE_LIMIT_BURST"); raw != "" {
		burst, err := strconv.Atoi(raw)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid RATE_LIMIT_BURST value: %s", raw)
		}
		cfg.RateLimit.Burst = burst
	}

	if raw := os.Getenv("RATE_LIMIT_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid RATE_LIMIT_TTL value: %s", raw)
		}
		cfg.RateLimit.ClientTTL = ttl
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
