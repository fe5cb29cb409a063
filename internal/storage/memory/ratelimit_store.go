package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// rateLimitStoreInMemory хранит состояние лимитера одного инстанса.
// Состояние не переживает рестарт процесса и не разделяется между
// инстансами; для общего состояния есть postgres-реализация.
type rateLimitStoreInMemory struct {
	mu      sync.RWMutex
	entries map[string]domain.RateLimitEntry
}

// NewRateLimitStore возвращает in-memory хранилище состояний лимитера.
func NewRateLimitStore() domain.RateLimitStore {
	return &rateLimitStoreInMemory{
		entries: make(map[string]domain.RateLimitEntry),
	}
}

// Get возвращает запись идентичности и флаг её существования.
func (s *rateLimitStoreInMemory) Get(identity string) (domain.RateLimitEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[identity]
	return entry, ok, nil
}

// Put сохраняет запись, перезаписывая существующую.
func (s *rateLimitStoreInMemory) Put(entry domain.RateLimitEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.Identity] = entry
	return nil
}

// Delete удаляет запись одной идентичности.
func (s *rateLimitStoreInMemory) Delete(identity string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[identity]
	if ok {
		delete(s.entries, identity)
	}
	return ok, nil
}

// DeleteAll очищает всё состояние лимитера.
func (s *rateLimitStoreInMemory) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]domain.RateLimitEntry)
	return nil
}

var _ domain.RateLimitStore = (*rateLimitStoreInMemory)(nil)
