package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/payment-relay/internal/domain"
)

type dedupeStore struct {
	db *sql.DB
}

// NewDedupeStore создаёт PostgreSQL-реализацию DedupeStore.
// Нужен, когда дедупликация должна переживать рестарты процесса.
func NewDedupeStore(store *Store) domain.DedupeStore {
	return &dedupeStore{db: store.DB()}
}

func (s *dedupeStore) MarkSeen(ctx context.Context, paymentID string, ttlAt time.Time) (bool, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return false, domain.ErrPaymentIDRequired
	}

	now := time.Now().UTC()
	if ttlAt.IsZero() {
		ttlAt = now.Add(30 * 24 * time.Hour)
	}

	execCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	// ON CONFLICT DO NOTHING даёт атомарный insert-if-absent:
	// first-sight определяется по числу затронутых строк.
	res, err := s.db.ExecContext(execCtx, `
		INSERT INTO processed_payments (payment_id, ttl_at, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (payment_id) DO NOTHING
	`, paymentID, ttlAt, now)
	if err != nil {
		return false, fmt.Errorf("mark payment seen: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark payment seen rows affected: %w", err)
	}

	return affected == 1, nil
}

func (s *dedupeStore) Seen(ctx context.Context, paymentID string) (bool, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return false, domain.ErrPaymentIDRequired
	}

	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var one int
	err := s.db.QueryRowContext(queryCtx, `
		SELECT 1
		FROM processed_payments
		WHERE payment_id = $1
	`, paymentID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check payment seen: %w", err)
	}

	return true, nil
}

func (s *dedupeStore) DeleteExpired(ctx context.Context, before time.Time, limit int) (int, error) {
	if before.IsZero() {
		before = time.Now().UTC()
	}

	execCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		res sql.Result
		err error
	)

	if limit > 0 {
		res, err = s.db.ExecContext(execCtx, `
			DELETE FROM processed_payments
			WHERE payment_id IN (
				SELECT payment_id
				FROM processed_payments
				WHERE ttl_at <= $1
				ORDER BY ttl_at ASC
				LIMIT $2
			)
		`, before, limit)
	} else {
		res, err = s.db.ExecContext(execCtx, `
			DELETE FROM processed_payments
			WHERE ttl_at <= $1
		`, before)
	}
	if err != nil {
		return 0, fmt.Errorf("delete expired processed payments: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("processed payments rows affected: %w", err)
	}

	return int(affected), nil
}

var _ domain.DedupeStore = (*dedupeStore)(nil)
