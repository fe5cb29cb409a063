package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func testOutboxRepository(t *testing.T) domain.OutboxRepository {
	t.Helper()

	uri := os.Getenv("STOREFRONT_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("STOREFRONT_TEST_MONGO_URI is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := Open(ctx, uri, fmt.Sprintf("storefront_test_%d", time.Now().UnixNano()))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		dropCtx, dropCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer dropCancel()
		_ = store.Database().Drop(dropCtx)
		_ = store.Close(dropCtx)
	})

	repo, err := NewOutboxRepository(ctx, store)
	if err != nil {
		t.Fatalf("new outbox repository: %v", err)
	}
	return repo
}

func TestOutboxRepository_EnqueueAndPullOrder(t *testing.T) {
	repo := testOutboxRepository(t)

	first, err := repo.Enqueue(domain.OutboxMessage{
		AggregateType: domain.AggregateOrder,
		AggregateID:   "68b1c0ffee0000000000aaaa",
		EventType:     domain.EventTypeOrderCreated,
		Payload:       []byte(`{"status":"pending"}`),
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected assigned id")
	}

	second, err := repo.Enqueue(domain.OutboxMessage{
		AggregateType: domain.AggregateOrder,
		AggregateID:   "68b1c0ffee0000000000aaaa",
		EventType:     domain.EventTypeOrderCancelled,
		Payload:       []byte(`{"status":"cancelled"}`),
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending messages, got %d", len(pending))
	}
	if pending[0].ID != first.ID || pending[1].ID != second.ID {
		t.Fatal("expected messages in enqueue order")
	}
	if pending[0].EventType != domain.EventTypeOrderCreated {
		t.Errorf("unexpected event type %s", pending[0].EventType)
	}
	if string(pending[1].Payload) != `{"status":"cancelled"}` {
		t.Errorf("unexpected payload %s", pending[1].Payload)
	}
}

func TestOutboxRepository_MarkSentRemovesFromBacklog(t *testing.T) {
	repo := testOutboxRepository(t)

	msg, err := repo.Enqueue(domain.OutboxMessage{
		AggregateType: domain.AggregateOrder,
		AggregateID:   "68b1c0ffee0000000000bbbb",
		EventType:     domain.EventTypeOrderStatusChanged,
		Payload:       []byte(`{"status":"shipped"}`),
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	stats, err := repo.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.PendingCount != 1 {
		t.Fatalf("expected 1 pending message, got %d", stats.PendingCount)
	}
	if stats.OldestPendingAt.IsZero() {
		t.Error("expected oldest pending timestamp")
	}

	if err := repo.MarkSent(msg.ID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty backlog, got %d messages", len(pending))
	}

	stats, err = repo.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.PendingCount != 0 {
		t.Fatalf("expected empty backlog, got %d pending", stats.PendingCount)
	}
}

func TestOutboxRepository_MarkUnknownMessage(t *testing.T) {
	repo := testOutboxRepository(t)

	if err := repo.MarkFailed("no-such-message"); !errors.Is(err, domain.ErrOutboxPublish) {
		t.Fatalf("expected ErrOutboxPublish, got %v", err)
	}
}
