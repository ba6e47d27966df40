package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockreceipt/pkg/logger"
)

type fakeRelay struct {
	mu      sync.Mutex
	batches []int
	calls   int
	purged  int
	err     error
}

func (f *fakeRelay) ProcessBatch(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if len(f.batches) == 0 {
		return 0, nil
	}
	n := f.batches[0]
	f.batches = f.batches[1:]
	return n, nil
}

func (f *fakeRelay) PurgePublished(ctx context.Context, retention time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purged++
	return 3, nil
}

func (f *fakeRelay) snapshot() (calls, purged, pending int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, f.purged, len(f.batches)
}

func TestOutboxWorker_DrainStopsOnEmptyBatch(t *testing.T) {
	relay := &fakeRelay{batches: []int{100, 100, 7}}
	w := NewOutboxWorker(relay, logger.Nop(), time.Second)

	w.drain(context.Background())

	calls, _, pending := relay.snapshot()
	assert.Equal(t, 4, calls)
	assert.Zero(t, pending)
}

func TestOutboxWorker_DrainStopsOnError(t *testing.T) {
	relay := &fakeRelay{err: errors.New("connection reset")}
	w := NewOutboxWorker(relay, logger.Nop(), time.Second)

	w.drain(context.Background())

	calls, _, _ := relay.snapshot()
	assert.Equal(t, 1, calls)
}

func TestOutboxWorker_RunPollsAndCleansUp(t *testing.T) {
	relay := &fakeRelay{batches: []int{2}}
	w := NewOutboxWorker(relay, logger.Nop(), 5*time.Millisecond)
	w.cleanupInterval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		calls, purged, pending := relay.snapshot()
		return calls >= 2 && purged >= 1 && pending == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestNewOutboxWorker_DefaultInterval(t *testing.T) {
	w := NewOutboxWorker(&fakeRelay{}, logger.Nop(), 0)
	assert.Equal(t, 500*time.Millisecond, w.pollInterval)
}
