package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/geocoder89/campushub/internal/config"
	"github.com/geocoder89/campushub/internal/db"
	"github.com/geocoder89/campushub/internal/domain/resource"
	"github.com/geocoder89/campushub/internal/domain/user"
	apphttp "github.com/geocoder89/campushub/internal/http"
	"github.com/geocoder89/campushub/internal/repo/postgres"
	"github.com/geocoder89/campushub/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const testPassword = "password123"

func testConfig(dsn string) config.Config {
	return config.Config{
		Env:                "test",
		DBURL:              dsn,
		JWTSecret:          "test-secret-key",
		AccessTTL:          time.Hour,
		RefreshTTL:         24 * time.Hour,
		SessionSecret:      "test-session-secret-0123456789ab",
		RateLimitPerMinute: 10000,
		MaxBodyBytes:       1 << 20,
	}
}

type testEnv struct {
	router *gin.Engine
	pool   *pgxpool.Pool
	users  *postgres.UsersRepo
	res    *postgres.ResourcesRepo
}

// setup needs a disposable PostgreSQL database in TEST_DB_DSN; every table
// is truncated.
func setup(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := db.Migrate(dsn, logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn, db.WithApplicationName("campushub-test"), db.WithMaxConns(20))
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE jobs, messages, reviews, bookings, resources, refresh_tokens, users CASCADE`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}

	router := apphttp.NewRouter(logger, apphttp.PostgresDeps(testConfig(dsn), pool, nil, nil, logger))

	return &testEnv{
		router: router,
		pool:   pool,
		users:  postgres.NewUsersRepo(pool, nil),
		res:    postgres.NewResourcesRepo(pool, nil),
	}
}

func (e *testEnv) createUser(t *testing.T, email string, role user.Role) user.User {
	t.Helper()

	hash, err := security.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	now := time.Now().UTC()
	u, err := e.users.Create(context.Background(), user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     string(role),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (e *testEnv) createResource(t *testing.T, ownerID, name string) resource.Resource {
	t.Helper()

	res, err := e.res.Create(context.Background(), resource.NewFromCreateRequest(resource.CreateRequest{
		Name:     name,
		Type:     resource.TypeRoom,
		Capacity: 8,
	}, ownerID))
	if err != nil {
		t.Fatalf("create resource: %v", err)
	}
	return res
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()

	w := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": testPassword})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", email, w.Code, w.Body.String())
	}

	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	decode(t, w, &resp)
	return resp.AccessToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}
