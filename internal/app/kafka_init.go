package app

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/service/outbox"
)

// initKafka поднимает producer и outbox-воркер, публикующий события
// жизненного цикла заказов. Kafka опциональна: без брокеров сервис
// работает, события остаются в outbox как pending.
func initKafka(ctx context.Context, cfg Config, outboxRepo domain.OutboxRepository, logger *log.Entry) (*kafka.Producer, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, func() {}
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, func() {}
	}
	logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")

	publisher := kafka.NewOutboxPublisher(producer, kafka.TopicOrderEvents)
	worker := outbox.NewWorker(outboxRepo, publisher,
		outbox.WithLogger(logger.WithField("component", "outbox-worker")),
		outbox.WithPollInterval(cfg.OutboxPollInterval),
	)

	workerCtx, stopWorker := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Run(workerCtx)
	}()

	cleanup := func() {
		stopWorker()
		<-done
		if err := producer.Close(); err != nil {
			logger.WithError(err).Warn("failed to close kafka producer")
		} else {
			logger.Info("kafka producer closed")
		}
	}
	return producer, cleanup
}
