package notifications

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var ErrProviderDown = errors.New("notification provider unavailable")

// LogNotifierConfig simulates a slow or failing provider in local runs.
type LogNotifierConfig struct {
	Delay time.Duration
	Fail  bool
}

// LogNotifier "delivers" notifications by writing a structured log line.
type LogNotifier struct {
	log *slog.Logger
	cfg LogNotifierConfig
}

func NewLogNotifier(log *slog.Logger, cfg LogNotifierConfig) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log, cfg: cfg}
}

func (n *LogNotifier) SendBookingNotification(ctx context.Context, in BookingNotification) error {
	if n.cfg.Delay > 0 {
		select {
		case <-time.After(n.cfg.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if n.cfg.Fail {
		return ErrProviderDown
	}

	p := in.Payload
	n.log.InfoContext(ctx, "notification.sent",
		"kind", string(in.Kind),
		"booking_id", p.BookingID,
		"resource", p.ResourceName,
		"recipient_id", p.RecipientID,
		"email", p.RecipientEmail,
		"status", p.Status,
		"start", p.StartTime,
		"end", p.EndTime,
	)
	return nil
}
