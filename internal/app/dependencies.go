package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
	mongostore "github.com/vladislavdragonenkov/storefront/internal/storage/mongo"
	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

// Dependencies содержит хранилища приложения и их health-проверки.
type Dependencies struct {
	OrderRepo  domain.OrderRepository
	LimitStore domain.RateLimitStore
	OutboxRepo domain.OutboxRepository
	Health     *healthcheck.Handler

	closers []func()
}

// Close освобождает подключения в порядке, обратном созданию.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// NewDependencies собирает хранилища по конфигурации: MongoDB и PostgreSQL
// подключаются только когда заданы, иначе всё живёт в памяти процесса.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{
		Health: healthcheck.NewHandler(version.String()),
	}

	if cfg.MongoURI != "" {
		store, err := mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		deps.closers = append(deps.closers, func() {
			if err := store.Close(context.Background()); err != nil {
				logger.WithError(err).Warn("failed to close mongo connection")
			}
		})

		repo, err := mongostore.NewOrderRepository(ctx, store)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("init mongo order repository: %w", err)
		}
		deps.OrderRepo = repo

		// Outbox живёт рядом с заказами: backlog событий переживает
		// перезапуск процесса.
		outboxRepo, err := mongostore.NewOutboxRepository(ctx, store)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("init mongo outbox repository: %w", err)
		}
		deps.OutboxRepo = outboxRepo

		deps.Health.Register("document-store", store.Ping)
		logger.WithField("database", cfg.MongoDatabase).Info("mongo order storage initialized")
	} else {
		deps.OrderRepo = memory.NewOrderRepository()
		deps.OutboxRepo = memory.NewOutboxRepository()
		logger.Info("using in-memory order storage")
	}

	if cfg.PostgresDSN != "" {
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		deps.closers = append(deps.closers, func() {
			if err := store.Close(); err != nil {
				logger.WithError(err).Warn("failed to close postgres connection")
			}
		})

		if err := store.EnsureSchema(ctx); err != nil {
			deps.Close()
			return nil, fmt.Errorf("ensure postgres schema: %w", err)
		}
		deps.LimitStore = postgres.NewRateLimitStore(store)
		deps.Health.Register("rate-limit-store", store.Ping)
		logger.Info("postgres rate limit storage initialized")
	} else {
		deps.LimitStore = memory.NewRateLimitStore()
		logger.Info("using in-memory rate limit storage")
	}

	return deps, nil
}
