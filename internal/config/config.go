package config

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	DBURL      string
	DBMaxConns int32

	JWTSecret     string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SessionSecret string

	AdminEmail     string
	AdminPassword  string
	AdminFirstName string
	AdminLastName  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	TracingEnabled   bool
	OTLPEndpoint     string
	TraceSampleRatio float64

	CORSAllowedOrigins []string
	RateLimitPerMinute int
	MaxBodyBytes       int64

	WorkerPollInterval time.Duration
	WorkerConcurrency  int
	WorkerHealthPort   int
	CompletionSweep    time.Duration
	JobLockTTL         time.Duration

	// local knobs for exercising retries and the circuit breaker
	NotifierDelay time.Duration
	NotifierFail  bool
}

// Load reads .env (when present) and then the process environment; real
// environment variables win over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env", "err", err)
	}

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		DBURL:      buildDBURL(),
		DBMaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),

		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
		AccessTTL:     time.Duration(getEnvInt("JWT_ACCESS_TTL_MINUTES", 15)) * time.Minute,
		RefreshTTL:    time.Duration(getEnvInt("JWT_REFRESH_TTL_HOURS", 24*7)) * time.Hour,
		SessionSecret: getEnv("SESSION_SECRET", "dev-session-secret-change-me-32b"),

		AdminEmail:     getEnv("ADMIN_EMAIL", ""),
		AdminPassword:  getEnv("ADMIN_PASSWORD", ""),
		AdminFirstName: getEnv("ADMIN_FIRST_NAME", "Admin"),
		AdminLastName:  getEnv("ADMIN_LAST_NAME", "User"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      time.Duration(getEnvInt("CACHE_TTL_SECONDS", 30)) * time.Second,

		TracingEnabled:   getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TraceSampleRatio: getEnvFloat("TRACE_SAMPLE_RATIO", 1),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),

		WorkerPollInterval: time.Duration(getEnvInt("WORKER_POLL_MS", 250)) * time.Millisecond,
		WorkerConcurrency:  getEnvInt("WORKER_CONCURRENCY", 4),
		WorkerHealthPort:   getEnvInt("WORKER_HEALTH_PORT", 8081),
		CompletionSweep:    time.Duration(getEnvInt("COMPLETION_SWEEP_SECONDS", 60)) * time.Second,
		JobLockTTL:         time.Duration(getEnvInt("JOB_LOCK_TTL_SECONDS", 60)) * time.Second,

		NotifierDelay: time.Duration(getEnvInt("NOTIFIER_SLEEP_MS", 0)) * time.Millisecond,
		NotifierFail:  getEnvBool("NOTIFIER_FAIL", false),
	}
}

func (c Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

// Validate rejects settings that are only acceptable in development.
func (c Config) Validate() error {
	if !c.IsProduction() {
		return nil
	}
	if len(c.JWTSecret) < 32 || strings.HasPrefix(c.JWTSecret, "dev-") {
		return fmt.Errorf("JWT_SECRET must be set to at least 32 characters in %s", c.Env)
	}
	if len(c.SessionSecret) < 32 || strings.HasPrefix(c.SessionSecret, "dev-") {
		return fmt.Errorf("SESSION_SECRET must be set to at least 32 characters in %s", c.Env)
	}
	return nil
}

func buildDBURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "campushub")
	pass := getEnv("DB_PASSWORD", "campushub")
	name := getEnv("DB_NAME", "campushub")
	ssl := getEnv("DB_SSLMODE", "disable")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, pass),
		Host:     host + ":" + port,
		Path:     "/" + name,
		RawQuery: "sslmode=" + url.QueryEscape(ssl),
	}
	return u.String()
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}
		return num
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			slog.Warn("invalid float env, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}
		return f
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return b
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
