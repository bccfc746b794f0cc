package observability

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveBookingOp(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	p.ObserveBookingOp("create", "ok")
	p.ObserveBookingOp("create", "conflict")
	p.ObserveBookingOp("create", "conflict")

	if got := testutil.ToFloat64(p.BookingOps.WithLabelValues("create", "conflict")); got != 2 {
		t.Fatalf("conflict count = %v, want 2", got)
	}
}

func TestObserveDBClassifiesErrors(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	err := p.ObserveDB("bookings.insert", func() error {
		return &pgconn.PgError{Code: "23P01"}
	})
	if err == nil {
		t.Fatalf("expected error to be returned")
	}

	if got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("bookings.insert", "exclusion_violation")); got != 1 {
		t.Fatalf("exclusion_violation count = %v, want 1", got)
	}

	_ = p.ObserveDB("bookings.get", func() error { return errors.New("dial tcp: connection refused") })
	if got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("bookings.get", "connection")); got != 1 {
		t.Fatalf("connection count = %v, want 1", got)
	}

	_ = p.ObserveDB("bookings.get", func() error { return fmt.Errorf("query: %w", context.DeadlineExceeded) })
	if got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("bookings.get", "timeout")); got != 1 {
		t.Fatalf("timeout count = %v, want 1", got)
	}
}

func TestObserveDBNoRowsIsNotAnError(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	err := p.ObserveDB("users.get_by_id", func() error { return pgx.ErrNoRows })
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("error must be passed through, got %v", err)
	}

	if got := testutil.CollectAndCount(p.DbErrorsTotal); got != 0 {
		t.Fatalf("no error series expected, got %d", got)
	}
	if got := testutil.CollectAndCount(p.DbQueryDuration); got != 1 {
		t.Fatalf("expected one duration series, got %d", got)
	}
}

func TestJobMetricsSnapshot(t *testing.T) {
	m := NewJobMetrics()
	m.Claimed()
	m.Claimed()
	m.Finished(JobDone, 10*time.Millisecond)
	m.Finished(JobRetried, 30*time.Millisecond)

	s := m.Snapshot()
	if s.Claimed != 2 || s.Done != 1 || s.Retried != 1 || s.Failed != 1 || s.DeadLettered != 0 {
		t.Fatalf("unexpected counters: %+v", s)
	}
	if s.AverageDuration != 20*time.Millisecond || s.MaxDuration != 30*time.Millisecond {
		t.Fatalf("unexpected durations: avg=%v max=%v", s.AverageDuration, s.MaxDuration)
	}
	if s.AverageMillis != 20 {
		t.Fatalf("avg millis = %v", s.AverageMillis)
	}
}
