package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type rateLimitStore struct {
	db *sql.DB
}

// NewRateLimitStore создаёт PostgreSQL-реализацию RateLimitStore.
// Общая таблица позволяет нескольким инстансам сервиса делить
// одно состояние лимитера.
func NewRateLimitStore(store *Store) domain.RateLimitStore {
	return &rateLimitStore{db: store.DB()}
}

func (s *rateLimitStore) Get(identity string) (domain.RateLimitEntry, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		entry        domain.RateLimitEntry
		blockedUntil sql.NullTime
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT identity, request_count, window_start, blocked_until
		FROM rate_limits
		WHERE identity = $1
	`, identity).Scan(
		&entry.Identity,
		&entry.Count,
		&entry.WindowStart,
		&blockedUntil,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.RateLimitEntry{}, false, nil
		}
		return domain.RateLimitEntry{}, false, fmt.Errorf("get rate limit entry: %w", err)
	}

	if blockedUntil.Valid {
		entry.BlockedUntil = blockedUntil.Time
	}
	return entry, true, nil
}

func (s *rateLimitStore) Put(entry domain.RateLimitEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var blockedUntil any
	if !entry.BlockedUntil.IsZero() {
		blockedUntil = entry.BlockedUntil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rate_limits (identity, request_count, window_start, blocked_until)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (identity) DO UPDATE
		SET request_count = EXCLUDED.request_count,
		    window_start = EXCLUDED.window_start,
		    blocked_until = EXCLUDED.blocked_until
	`, entry.Identity, entry.Count, entry.WindowStart, blockedUntil)
	if err != nil {
		return fmt.Errorf("put rate limit entry: %w", err)
	}
	return nil
}

func (s *rateLimitStore) Delete(identity string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM rate_limits
		WHERE identity = $1
	`, identity)
	if err != nil {
		return false, fmt.Errorf("delete rate limit entry: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rate limit rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *rateLimitStore) DeleteAll() error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM rate_limits`); err != nil {
		return fmt.Errorf("delete rate limit entries: %w", err)
	}
	return nil
}

var _ domain.RateLimitStore = (*rateLimitStore)(nil)
