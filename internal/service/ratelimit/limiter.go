package ratelimit

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const (
	defaultWindow        = time.Minute
	defaultMaxPerWindow  = 10
	defaultBlockDuration = 24 * time.Hour
)

var rateLimitDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "storefront_ratelimit_decisions_total",
	Help: "Total number of rate limiter decisions grouped by verdict.",
}, []string{"verdict"})

// Decision — исход проверки лимитера для одной попытки создания заказа.
type Decision int

const (
	// DecisionAllowed — попытка учтена, заказ можно создавать.
	DecisionAllowed Decision = iota
	// DecisionBlocked — идентичность заблокирована, заказ не создаётся.
	DecisionBlocked
)

// Config задаёт параметры окна и блокировки.
type Config struct {
	// Window — длина окна подсчёта отправок.
	Window time.Duration
	// MaxPerWindow — допустимое число отправок в окне; превышение блокирует.
	MaxPerWindow int
	// BlockDuration — срок блокировки после превышения квоты.
	BlockDuration time.Duration
}

// DefaultConfig возвращает документированные пороги: 10 отправок в минуту,
// блокировка на 24 часа.
func DefaultConfig() Config {
	return Config{
		Window:        defaultWindow,
		MaxPerWindow:  defaultMaxPerWindow,
		BlockDuration: defaultBlockDuration,
	}
}

// Option настраивает Limiter.
type Option func(*Limiter)

// WithLogger задаёт logger лимитера.
func WithLogger(logger *log.Entry) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// Limiter решает, может ли идентичность отправить заказ прямо сейчас,
// и фиксирует попытку. Решение принимается до попытки сохранить заказ:
// небольшой риск ложной блокировки при сбое записи приемлемее, чем
// возможность обойти квоту.
type Limiter struct {
	store  domain.RateLimitStore
	cfg    Config
	logger *log.Entry
	now    func() time.Time

	// mu делает check-then-increment атомарным; идентичности независимы,
	// поэтому одной критической секции на инстанс достаточно.
	mu sync.Mutex
}

// NewLimiter создаёт лимитер поверх переданного хранилища состояний.
func NewLimiter(store domain.RateLimitStore, cfg Config, options ...Option) *Limiter {
	if cfg.Window <= 0 {
		cfg.Window = defaultWindow
	}
	if cfg.MaxPerWindow <= 0 {
		cfg.MaxPerWindow = defaultMaxPerWindow
	}
	if cfg.BlockDuration <= 0 {
		cfg.BlockDuration = defaultBlockDuration
	}

	limiter := &Limiter{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
	for _, option := range options {
		option(limiter)
	}
	if limiter.logger == nil {
		limiter.logger = log.WithField("component", "rate-limiter")
	}
	return limiter
}

// CheckAndRecord проверяет квоту идентичности и учитывает попытку.
// Активная блокировка возвращает DecisionBlocked, не увеличивая счётчик.
// При ошибке хранилища лимитер деградирует в разрешение: недоступное общее
// хранилище не должно останавливать приём заказов.
func (l *Limiter) CheckAndRecord(identity string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC()

	entry, found, err := l.store.Get(identity)
	if err != nil {
		l.logger.WithError(err).WithField("identity", identity).Warn("rate limit store get failed, allowing")
		rateLimitDecisions.WithLabelValues("allowed").Inc()
		return DecisionAllowed
	}

	if found && entry.Blocked(now) {
		rateLimitDecisions.WithLabelValues("blocked").Inc()
		return DecisionBlocked
	}

	if !found || entry.WindowExpired(now, l.cfg.Window) {
		entry = domain.RateLimitEntry{Identity: identity, Count: 0, WindowStart: now}
	}

	entry.Count++
	if entry.Count > l.cfg.MaxPerWindow {
		entry.BlockedUntil = now.Add(l.cfg.BlockDuration)
		if err := l.store.Put(entry); err != nil {
			l.logger.WithError(err).WithField("identity", identity).Warn("rate limit store put failed")
		}
		l.logger.WithFields(log.Fields{
			"identity":      identity,
			"blocked_until": entry.BlockedUntil,
		}).Warn("identity blocked for exceeding submission quota")
		rateLimitDecisions.WithLabelValues("blocked").Inc()
		return DecisionBlocked
	}

	if err := l.store.Put(entry); err != nil {
		l.logger.WithError(err).WithField("identity", identity).Warn("rate limit store put failed, allowing")
	}
	rateLimitDecisions.WithLabelValues("allowed").Inc()
	return DecisionAllowed
}

// Unblock сбрасывает состояние одной идентичности. Возвращает false,
// если записи не существовало; это не ошибка, а сведение для админа.
func (l *Limiter) Unblock(identity string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Delete(identity)
}

// UnblockAll очищает состояние всех идентичностей.
func (l *Limiter) UnblockAll() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.DeleteAll()
}
