package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("notification circuit open")

type circuitState string

const (
	stateClosed   circuitState = "closed"
	stateOpen     circuitState = "open"
	stateHalfOpen circuitState = "half_open"
)

type ProtectedNotifierConfig struct {
	Timeout          time.Duration // per send
	FailureThreshold int           // consecutive failures before opening
	Cooldown         time.Duration // open -> half_open
	HalfOpenMaxCalls int
	Log              *slog.Logger
}

func (c *ProtectedNotifierConfig) setDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 3 * time.Second
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 3
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 15 * time.Second
	}
	if c.HalfOpenMaxCalls <= 0 {
		c.HalfOpenMaxCalls = 1
	}
	if c.Log == nil {
		c.Log = slog.Default()
	}
}

// ProtectedNotifier bounds each send with a timeout and stops calling a
// provider that keeps failing until the cooldown has passed. Rejected sends
// return ErrCircuitOpen, which the worker treats as retryable.
type ProtectedNotifier struct {
	inner Notifier
	cfg   ProtectedNotifierConfig
	now   func() time.Time

	mu       sync.Mutex
	state    circuitState
	failures int
	openedAt time.Time
	trials   int
}

func NewProtectedNotifier(inner Notifier, cfg ProtectedNotifierConfig) *ProtectedNotifier {
	cfg.setDefaults()
	return &ProtectedNotifier{inner: inner, cfg: cfg, now: time.Now, state: stateClosed}
}

func (n *ProtectedNotifier) SendBookingNotification(ctx context.Context, in BookingNotification) error {
	if !n.acquire() {
		return ErrCircuitOpen
	}

	sendCtx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	err := n.inner.SendBookingNotification(sendCtx, in)

	// the caller giving up says nothing about the provider
	if err != nil && ctx.Err() != nil {
		n.release()
		return err
	}

	n.record(err)
	return err
}

func (n *ProtectedNotifier) State() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return string(n.state)
}

func (n *ProtectedNotifier) acquire() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.state {
	case stateOpen:
		if n.now().Sub(n.openedAt) < n.cfg.Cooldown {
			return false
		}
		n.moveLocked(stateHalfOpen)
		n.trials = 1
		return true
	case stateHalfOpen:
		if n.trials >= n.cfg.HalfOpenMaxCalls {
			return false
		}
		n.trials++
		return true
	}
	return true
}

func (n *ProtectedNotifier) release() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state == stateHalfOpen && n.trials > 0 {
		n.trials--
	}
}

func (n *ProtectedNotifier) record(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == stateHalfOpen && n.trials > 0 {
		n.trials--
	}

	if err == nil {
		n.failures = 0
		n.moveLocked(stateClosed)
		return
	}

	n.failures++
	if n.state == stateHalfOpen || n.failures >= n.cfg.FailureThreshold {
		n.openedAt = n.now()
		n.moveLocked(stateOpen)
	}
}

func (n *ProtectedNotifier) moveLocked(to circuitState) {
	if n.state == to {
		return
	}
	n.cfg.Log.Warn("notifier circuit state changed", "from", string(n.state), "to", string(to), "failures", n.failures)
	n.state = to
}
