package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads configuration from the environment, optionally loading a .env
// file first. Missing .env files are not an error.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()

	path := ".env"
	if len(envFilePath) > 0 {
		path = envFilePath[0]
	}
	if err := godotenv.Load(path); err != nil {
		logger.Warn("no env file found, using system environment", "path", path)
	}

	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	logger.Info("app config loaded",
		"env", cfg.Env,
		"db", maskValue(cfg.DB.Url),
		"mpesa_env", cfg.Mpesa.Env,
		"mpesa_shortcode", cfg.Mpesa.ShortCode,
		"mpesa_consumer_key", maskValue(cfg.Mpesa.ConsumerKey),
		"session_ttl", cfg.Session.TTL,
		"pending_timeout", cfg.Reconcile.PendingTimeout,
		"sweep_interval", cfg.Reconcile.SweepInterval,
		"event_bus", cfg.EventBus.Driver,
		"rate_limit_max_requests", cfg.RateLimit.MaxRequests,
		"rate_limit_window", cfg.RateLimit.Window,
	)
	return &cfg, nil
}

func maskValue(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
