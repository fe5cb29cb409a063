package domain

import "time"

// RateLimitEntry хранит состояние квоты отправки заказов для одной идентичности.
// Идентичность — это id аутентифицированного пользователя либо сетевой адрес
// источника для анонимных запросов.
type RateLimitEntry struct {
	Identity    string
	Count       int
	WindowStart time.Time
	// BlockedUntil нулевое, пока идентичность не заблокирована.
	BlockedUntil time.Time
}

// Blocked сообщает, действует ли блокировка в момент now.
func (e RateLimitEntry) Blocked(now time.Time) bool {
	return !e.BlockedUntil.IsZero() && now.Before(e.BlockedUntil)
}

// WindowExpired сообщает, истекло ли текущее окно подсчёта.
func (e RateLimitEntry) WindowExpired(now time.Time, window time.Duration) bool {
	return now.Sub(e.WindowStart) > window
}

// RateLimitStore абстрагирует хранилище состояний лимитера, чтобы
// горизонтально масштабируемый деплой мог подставить общее внешнее
// хранилище, не меняя логику решений.
type RateLimitStore interface {
	// Get возвращает запись идентичности и флаг её существования.
	Get(identity string) (RateLimitEntry, bool, error)
	// Put сохраняет запись, перезаписывая существующую.
	Put(entry RateLimitEntry) error
	// Delete удаляет запись одной идентичности; false — записи не было.
	Delete(identity string) (bool, error)
	// DeleteAll очищает всё состояние лимитера.
	DeleteAll() error
}
