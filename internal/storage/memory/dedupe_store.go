package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/payment-relay/internal/domain"
)

const defaultTTL = 30 * 24 * time.Hour

type dedupeStoreInMemory struct {
	mu sync.RWMutex
	// seen отображает идентификатор платежа в срок жизни записи.
	seen map[string]time.Time
}

// NewDedupeStore создаёт in-memory реализацию DedupeStore.
// Владелец — app.Run; глобального состояния у пакета нет.
func NewDedupeStore() domain.DedupeStore {
	return &dedupeStoreInMemory{
		seen: make(map[string]time.Time),
	}
}

func (s *dedupeStoreInMemory) MarkSeen(_ context.Context, paymentID string, ttlAt time.Time) (bool, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return false, domain.ErrPaymentIDRequired
	}
	if ttlAt.IsZero() {
		ttlAt = time.Now().UTC().Add(defaultTTL)
	}

	// Проверка и вставка выполняются под одной блокировкой: два
	// конкурентных уведомления по одному платежу видят ровно один first=true.
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[paymentID]; ok {
		return false, nil
	}

	s.seen[paymentID] = ttlAt
	return true, nil
}

func (s *dedupeStoreInMemory) Seen(_ context.Context, paymentID string) (bool, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return false, domain.ErrPaymentIDRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.seen[paymentID]
	return ok, nil
}

func (s *dedupeStoreInMemory) DeleteExpired(_ context.Context, before time.Time, limit int) (int, error) {
	if before.IsZero() {
		before = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for paymentID, ttlAt := range s.seen {
		if ttlAt.After(before) {
			continue
		}

		delete(s.seen, paymentID)
		removed++
		if limit > 0 && removed >= limit {
			break
		}
	}

	return removed, nil
}

var _ domain.DedupeStore = (*dedupeStoreInMemory)(nil)
