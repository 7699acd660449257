package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sainath9392/tinylink/internal/metrics"
)

const (
	defaultClickWorkers    = 4
	defaultClickBufferSize = 1024
	defaultClickTimeout    = 5 * time.Second
)

// ClickStore persists a single click.
type ClickStore interface {
	RecordClick(ctx context.Context, shortCode string, clickedAt time.Time) error
}

type click struct {
	shortCode string
	clickedAt time.Time
}

// ClickRecorder writes clicks to the store in the background so the redirect
// path never waits on a write. Failed writes are logged and dropped.
type ClickRecorder struct {
	store   ClickStore
	logger  *slog.Logger
	workers int
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	clicks chan click
	wg     sync.WaitGroup
}

type ClickRecorderOption func(*ClickRecorder)

func WithClickWorkers(n int) ClickRecorderOption {
	return func(r *ClickRecorder) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithClickBufferSize(n int) ClickRecorderOption {
	return func(r *ClickRecorder) {
		if n > 0 {
			r.clicks = make(chan click, n)
		}
	}
}

// WithClickTimeout bounds each store write. Zero disables the bound.
func WithClickTimeout(d time.Duration) ClickRecorderOption {
	return func(r *ClickRecorder) {
		r.timeout = d
	}
}

func NewClickRecorder(store ClickStore, logger *slog.Logger, opts ...ClickRecorderOption) *ClickRecorder {
	r := &ClickRecorder{
		store:   store,
		logger:  logger,
		workers: defaultClickWorkers,
		timeout: defaultClickTimeout,
		clicks:  make(chan click, defaultClickBufferSize),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Start launches the workers. It must be called once.
func (r *ClickRecorder) Start() {
	r.logger.Info("starting click recorder", slog.Int("workers", r.workers), slog.Int("buffer_size", cap(r.clicks)))

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.work()
	}
}

// Record queues a click without blocking. It reports whether the click was
// accepted; a full or stopped recorder drops it.
func (r *ClickRecorder) Record(shortCode string, clickedAt time.Time) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.drop(shortCode, "click recorder stopped")
		return false
	}

	select {
	case r.clicks <- click{shortCode: shortCode, clickedAt: clickedAt}:
		metrics.ClickQueueLength.Inc()
		return true
	default:
		r.drop(shortCode, "click queue is full")
		return false
	}
}

// Stop stops accepting clicks and waits until the queued ones are written
// or ctx is done.
func (r *ClickRecorder) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.clicks)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("click recorder stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn("click recorder stopped before the queue was drained", slog.Int("pending", len(r.clicks)))
		return ctx.Err()
	}
}

func (r *ClickRecorder) work() {
	defer r.wg.Done()

	for c := range r.clicks {
		metrics.ClickQueueLength.Dec()
		r.write(c)
	}
}

func (r *ClickRecorder) write(c click) {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	if err := r.store.RecordClick(ctx, c.shortCode, c.clickedAt); err != nil {
		metrics.ClickUpdatesTotal.WithLabelValues(metrics.StatusError).Inc()
		r.logger.Error("failed to record click",
			slog.String("short_code", c.shortCode),
			slog.Any("err", err),
		)
		return
	}

	metrics.ClickUpdatesTotal.WithLabelValues(metrics.StatusSuccess).Inc()
}

func (r *ClickRecorder) drop(shortCode, reason string) {
	metrics.ClickUpdatesTotal.WithLabelValues(metrics.StatusDropped).Inc()
	r.logger.Warn(reason+", click dropped", slog.String("short_code", shortCode))
}
