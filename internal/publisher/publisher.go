// Package publisher promotes scheduled posts to published once their publish
// time passes. Promotion happens in two ways: a periodic sweep on a ticker,
// and an opportunistic sweep invoked before public listings so a reader never
// waits a full interval to see an overdue post. Both paths funnel into the
// same conditional store update, which is what makes concurrent sweeps safe.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"inkwell/internal/observability"
)

// Store is the single persistence operation the publisher needs.
type Store interface {
	// PublishDue promotes every scheduled post due at or before now and
	// returns how many rows this call changed.
	PublishDue(ctx context.Context, now time.Time) (int64, error)
}

// Publisher runs the publish sweeps.
type Publisher struct {
	store    Store
	interval time.Duration
	logger   *slog.Logger

	// now is swappable for tests.
	now func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// New creates a Publisher sweeping at the given interval.
func New(store Store, interval time.Duration, logger *slog.Logger) *Publisher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Publisher{
		store:    store,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Start launches the periodic sweep goroutine. It runs one sweep immediately
// so posts that came due while the process was down are promoted on boot.
// Start is a no-op if the publisher is already running.
func (p *Publisher) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})

	go p.run(ctx)
}

func (p *Publisher) run(ctx context.Context) {
	defer close(p.done)

	p.SweepQuietly(ctx, observability.SweepTriggerTicker)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.SweepQuietly(ctx, observability.SweepTriggerTicker)
		}
	}
}

// Stop halts the periodic sweep and waits for any in-flight sweep to finish.
// Safe to call multiple times.
func (p *Publisher) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.started = false
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Sweep promotes everything currently due and returns the promoted count.
// Callers on the request path use this form so a store failure can surface
// as a retryable error.
func (p *Publisher) Sweep(ctx context.Context, trigger string) (int64, error) {
	_, span := observability.GetTraceLayer().TraceSweep(ctx, trigger)
	defer span.End()

	start := p.now()
	promoted, err := p.store.PublishDue(ctx, start)
	observability.RecordSweep(trigger, promoted, p.now().Sub(start), err)

	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	if promoted > 0 {
		p.logger.InfoContext(ctx, "promoted scheduled posts",
			slog.Int64("count", promoted),
			slog.String("trigger", trigger),
		)
	}
	return promoted, nil
}

// SweepQuietly runs a sweep where no caller is waiting on the result; errors
// are logged and swallowed so one bad cycle never stops the ticker.
func (p *Publisher) SweepQuietly(ctx context.Context, trigger string) {
	if _, err := p.Sweep(ctx, trigger); err != nil {
		p.logger.ErrorContext(ctx, "publish sweep failed",
			slog.String("trigger", trigger),
			slog.String("error", err.Error()),
		)
	}
}
