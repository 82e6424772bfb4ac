package publisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	mu       sync.Mutex
	calls    int
	promoted int64
	err      error
	notify   chan struct{}
}

func (s *stubStore) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	s.calls++
	promoted, err := s.promoted, s.err
	notify := s.notify
	s.mu.Unlock()

	if notify != nil {
		select {
		case notify <- struct{}{}:
		default:
		}
	}
	return promoted, err
}

func (s *stubStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweep_ReturnsPromotedCount(t *testing.T) {
	store := &stubStore{promoted: 4}
	p := New(store, time.Minute, testLogger())

	promoted, err := p.Sweep(context.Background(), "manual")
	require.NoError(t, err)
	assert.Equal(t, int64(4), promoted)
	assert.Equal(t, 1, store.callCount())
}

func TestSweep_PropagatesStoreError(t *testing.T) {
	store := &stubStore{err: errors.New("connection refused")}
	p := New(store, time.Minute, testLogger())

	_, err := p.Sweep(context.Background(), "manual")
	assert.Error(t, err)
}

func TestSweepQuietly_SwallowsError(t *testing.T) {
	store := &stubStore{err: errors.New("connection refused")}
	p := New(store, time.Minute, testLogger())

	// Must not panic or propagate; the ticker loop relies on this.
	p.SweepQuietly(context.Background(), "ticker")
	assert.Equal(t, 1, store.callCount())
}

func TestStartStop_SweepsImmediatelyAndOnTicks(t *testing.T) {
	store := &stubStore{notify: make(chan struct{}, 8)}
	p := New(store, 10*time.Millisecond, testLogger())

	p.Start(context.Background())
	defer p.Stop()

	// One immediate sweep plus at least one tick.
	for i := 0; i < 2; i++ {
		select {
		case <-store.notify:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for sweep")
		}
	}
	assert.GreaterOrEqual(t, store.callCount(), 2)
}

func TestStop_HaltsSweeping(t *testing.T) {
	store := &stubStore{notify: make(chan struct{}, 8)}
	p := New(store, 5*time.Millisecond, testLogger())

	p.Start(context.Background())
	select {
	case <-store.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first sweep")
	}
	p.Stop()

	calls := store.callCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, store.callCount())

	// Stop again is a no-op.
	p.Stop()
}

func TestStart_Idempotent(t *testing.T) {
	store := &stubStore{}
	p := New(store, time.Hour, testLogger())

	p.Start(context.Background())
	p.Start(context.Background())
	p.Stop()
}

func TestNew_DefaultsInterval(t *testing.T) {
	p := New(&stubStore{}, 0, testLogger())
	assert.Equal(t, time.Minute, p.interval)
}
