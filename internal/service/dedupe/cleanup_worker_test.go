package dedupe_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/payment-relay/internal/domain"
	"github.com/vladislavdragonenkov/payment-relay/internal/service/dedupe"
	"github.com/vladislavdragonenkov/payment-relay/internal/storage/memory"
)

func TestCleanupWorker_DeleteExpiredDrainsInBatches(t *testing.T) {
	store := memory.NewDedupeStore()
	ctx := context.Background()
	expiredTTL := time.Now().UTC().Add(-time.Minute)

	for i := 0; i < 7; i++ {
		_, err := store.MarkSeen(ctx, fmt.Sprintf("pay-%d", i), expiredTTL)
		require.NoError(t, err)
	}
	_, err := store.MarkSeen(ctx, "pay-active", time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)

	worker := dedupe.NewCleanupWorker(store, dedupe.WithBatchSize(3))

	deleted, err := worker.DeleteExpired(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, 7, deleted)

	seen, err := store.Seen(ctx, "pay-active")
	require.NoError(t, err)
	require.True(t, seen, "active entry must survive cleanup")
}

func TestCleanupWorker_DeleteExpiredNothingToDo(t *testing.T) {
	worker := dedupe.NewCleanupWorker(memory.NewDedupeStore())

	deleted, err := worker.DeleteExpired(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	require.Zero(t, deleted)
}

type failingStore struct {
	domain.DedupeStore
	err error
}

func (f *failingStore) DeleteExpired(context.Context, time.Time, int) (int, error) {
	return 0, f.err
}

func TestCleanupWorker_DeleteExpiredPropagatesStoreError(t *testing.T) {
	storeErr := errors.New("storage unavailable")
	worker := dedupe.NewCleanupWorker(&failingStore{err: storeErr})

	_, err := worker.DeleteExpired(context.Background(), time.Now().UTC())
	require.ErrorIs(t, err, storeErr)
}

func TestCleanupWorker_DeleteExpiredRespectsCancellation(t *testing.T) {
	worker := dedupe.NewCleanupWorker(memory.NewDedupeStore())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := worker.DeleteExpired(ctx, time.Now().UTC())
	require.ErrorIs(t, err, context.Canceled)
}

func TestCleanupWorker_RunStopsOnCancel(t *testing.T) {
	worker := dedupe.NewCleanupWorker(memory.NewDedupeStore(), dedupe.WithInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}
