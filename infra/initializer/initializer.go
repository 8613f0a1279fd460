// Package initializer wires configuration into concrete infrastructure
// dependencies.
package initializer

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/wanjalab/pesaflow/infra"
	"github.com/wanjalab/pesaflow/infra/cache"
	infraeventbus "github.com/wanjalab/pesaflow/infra/eventbus"
	"github.com/wanjalab/pesaflow/infra/provider/daraja"
	infrasession "github.com/wanjalab/pesaflow/infra/repository/session"
	infratransaction "github.com/wanjalab/pesaflow/infra/repository/transaction"
	"github.com/wanjalab/pesaflow/pkg/app"
	"github.com/wanjalab/pesaflow/pkg/config"
	"github.com/wanjalab/pesaflow/pkg/eventbus"
)

// InitializeDependencies builds all application dependencies from config.
func InitializeDependencies(cfg *config.App) (*app.Deps, error) {
	deps := &app.Deps{}
	logger := setupLogger(cfg.Log)
	deps.Logger = logger

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		return nil, err
	}
	if err := infra.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	deps.SessionRepo = infrasession.New(db)
	deps.TransactionRepo = infratransaction.New(db)

	bus, err := newEventBus(cfg, logger)
	if err != nil {
		return nil, err
	}
	deps.EventBus = bus

	tokens, err := newTokenCache(cfg, logger)
	if err != nil {
		return nil, err
	}
	deps.Processor = daraja.New(cfg.Mpesa, tokens, logger)

	return deps, nil
}

func newEventBus(cfg *config.App, logger *slog.Logger) (eventbus.Bus, error) {
	switch cfg.EventBus.Driver {
	case "redis":
		bus, err := infraeventbus.NewWithRedis(
			cfg.Redis.URL,
			cfg.EventBus.Stream,
			cfg.EventBus.Group,
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("create redis event bus: %w", err)
		}
		return bus, nil
	case "kafka":
		bus, err := infraeventbus.NewWithKafka(
			cfg.EventBus.KafkaBrokers,
			cfg.EventBus.Stream,
			cfg.EventBus.Group,
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("create kafka event bus: %w", err)
		}
		return bus, nil
	default:
		return infraeventbus.NewWithMemory(logger), nil
	}
}

// newTokenCache prefers a shared Redis token cache so concurrent instances
// reuse one processor token; without Redis each instance caches in memory.
func newTokenCache(cfg *config.App, logger *slog.Logger) (cache.TokenCache, error) {
	if cfg.Redis.URL == "" {
		return cache.NewMemoryTokenCache(), nil
	}
	opt, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opt.PoolSize = cfg.Redis.PoolSize
	opt.DialTimeout = cfg.Redis.DialTimeout
	opt.ReadTimeout = cfg.Redis.ReadTimeout
	opt.WriteTimeout = cfg.Redis.WriteTimeout
	return cache.NewRedisTokenCache(opt, cfg.Redis.KeyPrefix, logger), nil
}
