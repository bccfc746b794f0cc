package db

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrateURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@localhost:5432/campushub?sslmode=disable":   "pgx5://u:p@localhost:5432/campushub?sslmode=disable",
		"postgresql://u:p@localhost:5432/campushub?sslmode=disable": "pgx5://u:p@localhost:5432/campushub?sslmode=disable",

		"pgx5://already": "pgx5://already",
	}

	for in, want := range tests {
		if got := migrateURL(in); got != want {
			t.Errorf("migrateURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	if len(ups) == 0 {
		t.Fatalf("no migrations embedded")
	}
	for v := range ups {
		if !downs[v] {
			t.Errorf("migration %s has no down file", v)
		}
	}
}

func TestSchemaHasOverlapExclusion(t *testing.T) {
	raw, err := migrationsFS.ReadFile("migrations/0001_init.up.sql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	sql := string(raw)
	for _, want := range []string{
		"EXCLUDE USING gist",
		"tstzrange(start_time, end_time, '[)')",
		"reviews_user_resource_uniq",
		"jobs_idempotency_key_uniq",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("schema missing %q", want)
		}
	}
}
