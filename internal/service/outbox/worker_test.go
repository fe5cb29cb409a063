package outbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/outbox"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

// stubPublisher накапливает опубликованные события и умеет падать
// заданное число раз.
type stubPublisher struct {
	mu        sync.Mutex
	published []domain.OutboxMessage
	failTimes int
}

func (p *stubPublisher) Publish(event domain.OutboxMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failTimes > 0 {
		p.failTimes--
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, event)
	return nil
}

func (p *stubPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func TestWorkerPublishesPending(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := &stubPublisher{}

	_, _ = repo.Enqueue(domain.OutboxMessage{AggregateID: "o1", EventType: "order.created"})
	_, _ = repo.Enqueue(domain.OutboxMessage{AggregateID: "o2", EventType: "order.cancelled"})

	worker := outbox.NewWorker(repo, publisher, outbox.WithRetryBaseDelay(0))
	worker.ProcessOnce(context.Background())

	if publisher.count() != 2 {
		t.Fatalf("expected 2 published events, got %d", publisher.count())
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty backlog, got %d", len(pending))
	}
}

func TestWorkerRetriesTransientFailure(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := &stubPublisher{failTimes: 2}

	_, _ = repo.Enqueue(domain.OutboxMessage{AggregateID: "o1", EventType: "order.created"})

	worker := outbox.NewWorker(repo, publisher,
		outbox.WithMaxAttempts(3),
		outbox.WithRetryBaseDelay(0),
	)
	worker.ProcessOnce(context.Background())

	if publisher.count() != 1 {
		t.Fatalf("expected successful publish after retries, got %d", publisher.count())
	}
}

func TestWorkerMarksFailedAfterExhaustedAttempts(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := &stubPublisher{failTimes: 10}

	_, _ = repo.Enqueue(domain.OutboxMessage{AggregateID: "o1", EventType: "order.created"})

	worker := outbox.NewWorker(repo, publisher,
		outbox.WithMaxAttempts(2),
		outbox.WithRetryBaseDelay(0),
	)
	worker.ProcessOnce(context.Background())

	if publisher.count() != 0 {
		t.Fatalf("expected no successful publish, got %d", publisher.count())
	}

	// Сообщение помечено failed и не возвращается как pending.
	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected failed message out of backlog, got %d pending", len(pending))
	}
}

func TestWorkerStopsOnCancelledContext(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := &stubPublisher{}

	_, _ = repo.Enqueue(domain.OutboxMessage{AggregateID: "o1", EventType: "order.created"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	worker := outbox.NewWorker(repo, publisher, outbox.WithRetryBaseDelay(0))
	worker.ProcessOnce(ctx)

	if publisher.count() != 0 {
		t.Fatalf("expected no publishes after cancel, got %d", publisher.count())
	}
}
