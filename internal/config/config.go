package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultListenAddr   = ":8080"
	defaultDatabaseURL  = "karaoke.db"
	defaultJWTSecret    = "change-me-jwt-secret"
	defaultGuestJWTTTL  = "12h"
	defaultScorerTO     = "20s"
	defaultWorkerPeriod = "5s"
)

// Config is the process-level configuration read once at startup.
// Night-to-night operator settings live in Settings instead.
type Config struct {
	AppEnv        string
	ListenAddr    string
	DatabaseURL   string
	JWTSecret     string
	GuestJWTTTL   time.Duration
	AdminKeyHash  string
	ScorerURL     string
	ScorerTimeout time.Duration
	YouTubeAPIKey string
	RecordingsDir string
	WorkerPeriod  time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.ListenAddr = getEnv("LISTEN_ADDR", defaultListenAddr)
	cfg.DatabaseURL = getEnv("DATABASE_URL", defaultDatabaseURL)
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.AdminKeyHash = strings.TrimSpace(os.Getenv("ADMIN_KEY_HASH"))
	cfg.ScorerURL = strings.TrimSpace(os.Getenv("SCORER_URL"))
	cfg.YouTubeAPIKey = strings.TrimSpace(os.Getenv("YOUTUBE_API_KEY"))
	cfg.RecordingsDir = getEnv("RECORDINGS_DIR", "recordings")

	var err error
	cfg.GuestJWTTTL, err = parseDurationEnv("GUEST_JWT_TTL", defaultGuestJWTTTL)
	if err != nil {
		return nil, err
	}
	cfg.ScorerTimeout, err = parseDurationEnv("SCORER_TIMEOUT", defaultScorerTO)
	if err != nil {
		return nil, err
	}
	cfg.WorkerPeriod, err = parseDurationEnv("QUEUE_WORKER_PERIOD", defaultWorkerPeriod)
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.GuestJWTTTL <= 0 {
		return fmt.Errorf("GUEST_JWT_TTL must be > 0")
	}
	if cfg.WorkerPeriod <= 0 {
		return fmt.Errorf("QUEUE_WORKER_PERIOD must be > 0")
	}
	if isProdLike(cfg.AppEnv) {
		if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.AdminKeyHash == "" {
			return fmt.Errorf("in prod/release ADMIN_KEY_HASH must be set")
		}
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
