package memory_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

func TestRateLimitStore_PutGet(t *testing.T) {
	store := memory.NewRateLimitStore()

	if _, found, err := store.Get("user-1"); err != nil || found {
		t.Fatalf("expected empty store, found=%v err=%v", found, err)
	}

	entry := domain.RateLimitEntry{
		Identity:    "user-1",
		Count:       3,
		WindowStart: time.Now().UTC(),
	}
	if err := store.Put(entry); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, found, err := store.Get("user-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !found || got.Count != 3 {
		t.Fatalf("expected stored entry with count 3, got %+v found=%v", got, found)
	}
}

func TestRateLimitStore_Delete(t *testing.T) {
	store := memory.NewRateLimitStore()
	_ = store.Put(domain.RateLimitEntry{Identity: "user-1", Count: 1})

	found, err := store.Delete("user-1")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !found {
		t.Fatal("expected existing entry to be reported")
	}

	found, err = store.Delete("user-1")
	if err != nil {
		t.Fatalf("repeated delete failed: %v", err)
	}
	if found {
		t.Fatal("repeated delete must report not found")
	}
}

func TestRateLimitStore_DeleteAll(t *testing.T) {
	store := memory.NewRateLimitStore()
	_ = store.Put(domain.RateLimitEntry{Identity: "a", Count: 1})
	_ = store.Put(domain.RateLimitEntry{Identity: "b", Count: 2})

	if err := store.DeleteAll(); err != nil {
		t.Fatalf("delete all failed: %v", err)
	}
	if _, found, _ := store.Get("a"); found {
		t.Fatal("expected store to be empty after delete all")
	}
}
