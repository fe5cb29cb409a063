package ratelimit_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/service/ratelimit"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

// fakeClock позволяет сдвигать время в тестах.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) now() time.Time {
	return c.current
}

func (c *fakeClock) advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func newLimiter(t *testing.T) (*ratelimit.Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{current: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	limiter := ratelimit.NewLimiter(
		memory.NewRateLimitStore(),
		ratelimit.DefaultConfig(),
		ratelimit.WithClock(clock.now),
	)
	return limiter, clock
}

func TestLimiterThreshold(t *testing.T) {
	limiter, clock := newLimiter(t)

	// Первые 10 попыток в окне проходят.
	for i := 0; i < 10; i++ {
		if got := limiter.CheckAndRecord("user-1"); got != ratelimit.DecisionAllowed {
			t.Fatalf("attempt %d: expected allowed, got %v", i+1, got)
		}
		clock.advance(500 * time.Millisecond)
	}

	// Одиннадцатая в том же окне блокирует.
	if got := limiter.CheckAndRecord("user-1"); got != ratelimit.DecisionBlocked {
		t.Fatalf("11th attempt: expected blocked, got %v", got)
	}

	// Блокировка действует и секундой позже.
	clock.advance(time.Second)
	if got := limiter.CheckAndRecord("user-1"); got != ratelimit.DecisionBlocked {
		t.Fatal("expected blocked while block is active")
	}

	// После истечения 24-часовой блокировки попытка оценивается заново.
	clock.advance(24 * time.Hour)
	if got := limiter.CheckAndRecord("user-1"); got != ratelimit.DecisionAllowed {
		t.Fatalf("expected allowed after block expiry, got %v", got)
	}
}

func TestLimiterWindowReset(t *testing.T) {
	limiter, clock := newLimiter(t)

	for i := 0; i < 10; i++ {
		if got := limiter.CheckAndRecord("user-2"); got != ratelimit.DecisionAllowed {
			t.Fatalf("attempt %d: expected allowed, got %v", i+1, got)
		}
	}

	// Новое окно обнуляет счётчик; квота доступна снова.
	clock.advance(2 * time.Minute)
	for i := 0; i < 10; i++ {
		if got := limiter.CheckAndRecord("user-2"); got != ratelimit.DecisionAllowed {
			t.Fatalf("fresh window attempt %d: expected allowed, got %v", i+1, got)
		}
	}
	if got := limiter.CheckAndRecord("user-2"); got != ratelimit.DecisionBlocked {
		t.Fatal("expected blocked after exceeding fresh window quota")
	}
}

func TestLimiterIdentitiesAreIndependent(t *testing.T) {
	limiter, _ := newLimiter(t)

	for i := 0; i < 11; i++ {
		limiter.CheckAndRecord("noisy")
	}
	if got := limiter.CheckAndRecord("noisy"); got != ratelimit.DecisionBlocked {
		t.Fatal("expected noisy identity to be blocked")
	}
	if got := limiter.CheckAndRecord("quiet"); got != ratelimit.DecisionAllowed {
		t.Fatal("block of one identity must not affect another")
	}
}

func TestLimiterUnblock(t *testing.T) {
	limiter, _ := newLimiter(t)

	for i := 0; i < 11; i++ {
		limiter.CheckAndRecord("user-3")
	}
	if got := limiter.CheckAndRecord("user-3"); got != ratelimit.DecisionBlocked {
		t.Fatal("expected blocked before unblock")
	}

	found, err := limiter.Unblock("user-3")
	if err != nil {
		t.Fatalf("unblock failed: %v", err)
	}
	if !found {
		t.Fatal("expected existing entry to be reported")
	}
	if got := limiter.CheckAndRecord("user-3"); got != ratelimit.DecisionAllowed {
		t.Fatal("expected allowed after unblock")
	}
}

func TestLimiterUnblockMissingKey(t *testing.T) {
	limiter, _ := newLimiter(t)

	// Состояние других идентичностей не должно пострадать.
	limiter.CheckAndRecord("bystander")

	found, err := limiter.Unblock("never-seen")
	if err != nil {
		t.Fatalf("unblock failed: %v", err)
	}
	if found {
		t.Fatal("expected missing key to be reported as not found")
	}
	if got := limiter.CheckAndRecord("bystander"); got != ratelimit.DecisionAllowed {
		t.Fatal("bystander state must be intact")
	}
}

func TestLimiterUnblockAll(t *testing.T) {
	limiter, _ := newLimiter(t)

	for i := 0; i < 11; i++ {
		limiter.CheckAndRecord("user-4")
	}
	if err := limiter.UnblockAll(); err != nil {
		t.Fatalf("unblock all failed: %v", err)
	}
	if got := limiter.CheckAndRecord("user-4"); got != ratelimit.DecisionAllowed {
		t.Fatal("expected allowed after global unblock")
	}
}

func TestLimiterConcurrentSameIdentity(t *testing.T) {
	limiter, _ := newLimiter(t)

	done := make(chan ratelimit.Decision, 20)
	for i := 0; i < 20; i++ {
		go func() {
			done <- limiter.CheckAndRecord("racer")
		}()
	}

	allowed := 0
	for i := 0; i < 20; i++ {
		if <-done == ratelimit.DecisionAllowed {
			allowed++
		}
	}
	// check-then-increment атомарен: ровно квота проходит, остальное блокируется.
	if allowed != 10 {
		t.Fatalf("expected exactly 10 allowed, got %d", allowed)
	}
}
