package middlewares

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// WindowCounter counts hits for key inside a fixed window and reports how
// long until that window resets.
type WindowCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int, resetIn time.Duration, err error)
}

// RateLimiter caps requests per key per window. Counts live in process
// memory unless a shared WindowCounter is supplied.
type RateLimiter struct {
	limit   int
	window  time.Duration
	prefix  string
	counter WindowCounter
}

type RateLimiterOption func(*RateLimiter)

// WithCounter shares the window across API replicas (redis).
func WithCounter(c WindowCounter) RateLimiterOption {
	return func(rl *RateLimiter) {
		if c != nil {
			rl.counter = c
		}
	}
}

// WithKeyPrefix keeps two limiters on the same counter apart.
func WithKeyPrefix(p string) RateLimiterOption {
	return func(rl *RateLimiter) { rl.prefix = p }
}

func NewRateLimiter(limit int, window time.Duration, opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		limit:   limit,
		window:  window,
		prefix:  "rl:",
		counter: newMemoryCounter(time.Now),
	}
	for _, o := range opts {
		o(rl)
	}
	return rl
}

func (rl *RateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)
		if key == "" {
			key = clientIP(c)
		}

		count, resetIn, err := rl.counter.Hit(c.Request.Context(), rl.prefix+key, rl.window)
		if err != nil {
			// fail open: a counter outage must not take the API down
			slog.WarnContext(c.Request.Context(), "rate limiter unavailable", "err", err)
			c.Next()
			return
		}

		if count > rl.limit {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(resetIn.Seconds()))))
			abortError(c, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please try again shortly.", nil)
			return
		}

		c.Next()
	}
}

const maxTrackedClients = 10000

type memoryCounter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	count     int
	windowEnd time.Time
}

func newMemoryCounter(now func() time.Time) *memoryCounter {
	return &memoryCounter{buckets: make(map[string]*bucket), now: now}
}

func (m *memoryCounter) Hit(_ context.Context, key string, window time.Duration) (int, time.Duration, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.buckets) > maxTrackedClients {
		for k, b := range m.buckets {
			if now.After(b.windowEnd) {
				delete(m.buckets, k)
			}
		}
	}

	b, ok := m.buckets[key]
	if !ok || now.After(b.windowEnd) {
		b = &bucket{windowEnd: now.Add(window)}
		m.buckets[key] = b
	}
	b.count++

	return b.count, b.windowEnd.Sub(now), nil
}

// KeyByIP is for unauthenticated endpoints such as login.
func KeyByIP(c *gin.Context) string {
	return "ip:" + clientIP(c)
}

// KeyByUserOrIP prefers the authenticated user; it must run after auth.
func KeyByUserOrIP(c *gin.Context) string {
	if id, ok := UserIDFromContext(c); ok {
		return "user:" + id
	}
	return "ip:" + clientIP(c)
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()

	if host, _, err := net.SplitHostPort(ip); err == nil && host != "" {
		return host
	}
	return ip
}
