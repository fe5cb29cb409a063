package app

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewDependencies_MemoryDefaults(t *testing.T) {
	deps, err := NewDependencies(context.Background(), DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("new dependencies: %v", err)
	}
	defer deps.Close()

	if deps.OrderRepo == nil {
		t.Error("expected order repository")
	}
	if deps.LimitStore == nil {
		t.Error("expected rate limit store")
	}
	if deps.OutboxRepo == nil {
		t.Error("expected outbox repository")
	}
	if deps.Health == nil {
		t.Error("expected health handler")
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.MetricsAddr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, cfg)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Fatalf("unexpected run error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after context cancel")
	}
}
