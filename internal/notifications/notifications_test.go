package notifications

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/campushub/internal/jobs"
)

type fakeNotifier struct {
	calls int
	err   error
}

func (f *fakeNotifier) SendBookingNotification(ctx context.Context, _ BookingNotification) error {
	f.calls++
	return f.err
}

func sample() BookingNotification {
	return BookingNotification{
		Kind: KindBookingStatusChanged,
		Payload: jobs.BookingNotificationPayload{
			BookingID:      "b1",
			ResourceName:   "Study Room 101",
			RecipientID:    "u1",
			RecipientEmail: "student@campus.edu",
			Status:         "confirmed",
		},
	}
}

func TestKindForJobType(t *testing.T) {
	if k, ok := KindForJobType(jobs.TypeBookingRequested); !ok || k != KindBookingRequested {
		t.Fatalf("requested: got %q %v", k, ok)
	}
	if k, ok := KindForJobType(jobs.TypeBookingStatusChanged); !ok || k != KindBookingStatusChanged {
		t.Fatalf("status changed: got %q %v", k, ok)
	}
	if _, ok := KindForJobType("email.blast"); ok {
		t.Fatal("unknown type should not map")
	}
}

func TestLogNotifierWritesRecord(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)), LogNotifierConfig{})

	if err := n.SendBookingNotification(context.Background(), sample()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"msg":"notification.sent"`, `"booking_id":"b1"`, `"kind":"booking_status_changed"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %s: %s", want, out)
		}
	}
}

func TestLogNotifierSimulatedOutage(t *testing.T) {
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), LogNotifierConfig{Fail: true})

	if err := n.SendBookingNotification(context.Background(), sample()); !errors.Is(err, ErrProviderDown) {
		t.Fatalf("expected ErrProviderDown, got %v", err)
	}
}

func TestLogNotifierHonoursContext(t *testing.T) {
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), LogNotifierConfig{Delay: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := n.SendBookingNotification(ctx, sample()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestProtectedNotifierOpensAfterThreshold(t *testing.T) {
	inner := &fakeNotifier{err: errors.New("boom")}
	n := NewProtectedNotifier(inner, ProtectedNotifierConfig{FailureThreshold: 2, Cooldown: time.Minute})

	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if err := n.SendBookingNotification(context.Background(), sample()); err == nil {
			t.Fatal("expected inner error")
		}
	}
	if n.State() != "open" {
		t.Fatalf("expected open, got %s", n.State())
	}

	if err := n.SendBookingNotification(context.Background(), sample()); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("open circuit should not call provider, calls=%d", inner.calls)
	}
}

func TestProtectedNotifierHalfOpenRecovers(t *testing.T) {
	inner := &fakeNotifier{err: errors.New("boom")}
	n := NewProtectedNotifier(inner, ProtectedNotifierConfig{FailureThreshold: 1, Cooldown: time.Minute})

	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return now }

	_ = n.SendBookingNotification(context.Background(), sample())
	if n.State() != "open" {
		t.Fatalf("expected open, got %s", n.State())
	}

	now = now.Add(2 * time.Minute)
	inner.err = nil

	if err := n.SendBookingNotification(context.Background(), sample()); err != nil {
		t.Fatalf("trial call should pass: %v", err)
	}
	if n.State() != "closed" {
		t.Fatalf("expected closed after successful trial, got %s", n.State())
	}
}

func TestProtectedNotifierHalfOpenFailureReopens(t *testing.T) {
	inner := &fakeNotifier{err: errors.New("boom")}
	n := NewProtectedNotifier(inner, ProtectedNotifierConfig{FailureThreshold: 1, Cooldown: time.Minute})

	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return now }

	_ = n.SendBookingNotification(context.Background(), sample())
	now = now.Add(2 * time.Minute)

	if err := n.SendBookingNotification(context.Background(), sample()); err == nil {
		t.Fatal("expected trial failure")
	}
	if n.State() != "open" {
		t.Fatalf("expected reopened circuit, got %s", n.State())
	}
}

func TestProtectedNotifierIgnoresCallerCancellation(t *testing.T) {
	inner := &fakeNotifier{err: context.Canceled}
	n := NewProtectedNotifier(inner, ProtectedNotifierConfig{
		FailureThreshold: 1,
		Log:              slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := n.SendBookingNotification(ctx, sample()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if n.State() != "closed" {
		t.Fatalf("shutdown must not trip the breaker, got %s", n.State())
	}
}

func TestProtectedNotifierLogsTransitions(t *testing.T) {
	var buf bytes.Buffer
	n := NewProtectedNotifier(&fakeNotifier{err: errors.New("boom")}, ProtectedNotifierConfig{
		FailureThreshold: 1,
		Log:              slog.New(slog.NewTextHandler(&buf, nil)),
	})

	_ = n.SendBookingNotification(context.Background(), sample())

	if out := buf.String(); !strings.Contains(out, "from=closed") || !strings.Contains(out, "to=open") {
		t.Fatalf("missing transition log: %s", out)
	}
}
