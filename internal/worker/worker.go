package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/geocoder89/campushub/internal/domain/job"
	"github.com/geocoder89/campushub/internal/notifications"
	"github.com/geocoder89/campushub/internal/observability"
)

var ErrShutdownTimeout = errors.New("worker shutdown grace period exceeded")

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (job.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
	RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error)
}

// BookingSweeper persists confirmed -> completed once a booking has ended.
type BookingSweeper interface {
	CompleteElapsed(ctx context.Context, now time.Time) (int64, error)
}

type Config struct {
	WorkerID      string
	PollInterval  time.Duration
	Concurrency   int
	ShutdownGrace time.Duration
	LockTTL       time.Duration
	SweepInterval time.Duration
	JobTimeout    time.Duration
}

func (c Config) withDefaults() Config {
	if c.WorkerID == "" {
		c.WorkerID = "worker"
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 250 * time.Millisecond
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.ShutdownGrace <= 0 {
		c.ShutdownGrace = 10 * time.Second
	}
	if c.LockTTL <= 0 {
		c.LockTTL = time.Minute
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = 10 * time.Second
	}
	return c
}

type Worker struct {
	cfg      Config
	repo     JobsRepository
	bookings BookingSweeper
	notifier notifications.Notifier
	log      *slog.Logger
	prom     *observability.Prom
	metrics  *observability.JobMetrics
	now      func() time.Time
	backoff  func(attempt int) time.Duration

	readyMu sync.RWMutex
	ready   bool
}

type Option func(*Worker)

func WithLogger(log *slog.Logger) Option {
	return func(w *Worker) { w.log = log }
}

func WithProm(p *observability.Prom) Option {
	return func(w *Worker) { w.prom = p }
}

func WithClock(now func() time.Time) Option {
	return func(w *Worker) { w.now = now }
}

func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(w *Worker) { w.backoff = fn }
}

func New(cfg Config, repo JobsRepository, bookings BookingSweeper, notifier notifications.Notifier, opts ...Option) *Worker {
	w := &Worker{
		cfg:      cfg.withDefaults(),
		repo:     repo,
		bookings: bookings,
		notifier: notifier,
		log:      slog.Default(),
		metrics:  observability.NewJobMetrics(),
		now:      func() time.Time { return time.Now().UTC() },
		backoff:  ExponentialBackoff,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) Metrics() *observability.JobMetrics { return w.metrics }

func (w *Worker) Ready() bool {
	w.readyMu.RLock()
	defer w.readyMu.RUnlock()
	return w.ready
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}

// Run starts Concurrency job loops plus the maintenance loop and blocks until
// ctx is cancelled. In-flight jobs get ShutdownGrace to finish.
func (w *Worker) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	for i := 0; i < w.cfg.Concurrency; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			w.loop(ctx, slot)
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.maintain(ctx)
	}()

	w.setReady(true)
	w.log.Info("worker started", "worker_id", w.cfg.WorkerID, "concurrency", w.cfg.Concurrency)

	<-ctx.Done()
	w.setReady(false)
	w.log.Info("worker received shutdown signal")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(w.cfg.ShutdownGrace):
		return ErrShutdownTimeout
	}
}

func (w *Worker) loop(ctx context.Context, slot int) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		// drain while there is work, then wait for the next tick
		for ctx.Err() == nil {
			processed, err := w.ProcessOne(ctx)
			if err != nil && ctx.Err() == nil {
				w.log.Error("process job", "slot", slot, "err", err)
			}
			if !processed {
				break
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) maintain(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		w.Maintain(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Maintain releases jobs held by dead workers and completes elapsed bookings.
func (w *Worker) Maintain(ctx context.Context) {
	n, err := w.repo.RequeueStaleProcessing(ctx, w.cfg.LockTTL)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error("requeue stale jobs", "err", err)
		}
	} else if n > 0 {
		w.log.Warn("requeued stale jobs", "count", n)
	}

	if _, err := w.SweepCompleted(ctx); err != nil && ctx.Err() == nil {
		w.log.Error("complete elapsed bookings", "err", err)
	}
}

func (w *Worker) SweepCompleted(ctx context.Context) (int64, error) {
	if w.bookings == nil {
		return 0, nil
	}

	n, err := w.bookings.CompleteElapsed(ctx, w.now())
	if err != nil {
		return 0, err
	}

	if n > 0 {
		w.log.Info("bookings completed", "count", n)
		if w.prom != nil {
			w.prom.BookingsCompleted.Add(float64(n))
		}
	}
	return n, nil
}
