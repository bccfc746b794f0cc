package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/geocoder89/campushub/internal/config"
	"github.com/geocoder89/campushub/internal/db"
	"github.com/geocoder89/campushub/internal/observability"
	flag "github.com/spf13/pflag"
)

func main() {
	migrateFirst := flag.Bool("migrate", true, "apply pending migrations before seeding")
	reset := flag.Bool("reset", false, "drop and recreate the schema (destroys all data)")
	demo := flag.Bool("demo", true, "insert the demo campus: users, resources, bookings, reviews and messages")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: seed [flags]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env, "campushub-seed")
	slog.SetDefault(log)

	if *reset {
		if cfg.IsProduction() {
			log.Error("refusing to reset schema in production")
			os.Exit(1)
		}
		if err := db.Reset(cfg.DBURL, log); err != nil {
			log.Error("reset failed", "err", err)
			os.Exit(1)
		}
	} else if *migrateFirst {
		if err := db.Migrate(cfg.DBURL, log); err != nil {
			log.Error("migrations failed", "err", err)
			os.Exit(1)
		}
	}

	ctx, cancel := config.WithTimeout(30 * time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DBURL, db.WithApplicationName("campushub-seed"), db.WithMaxConns(2))
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if created, err := db.EnsureAdminUser(ctx, pool, cfg); err != nil {
		log.Error("admin bootstrap failed", "err", err)
		os.Exit(1)
	} else if created {
		log.Info("bootstrap admin created", "email", cfg.AdminEmail)
	}

	if !*demo {
		return
	}

	rep, err := db.SeedDemo(ctx, pool, time.Now().UTC())
	if err != nil {
		log.Error("seed failed", "err", err)
		os.Exit(1)
	}

	if rep == (db.SeedReport{}) {
		log.Info("database already has users, demo seed skipped")
		return
	}

	log.Info("demo data seeded",
		"users", rep.Users,
		"resources", rep.Resources,
		"bookings", rep.Bookings,
		"reviews", rep.Reviews,
		"messages", rep.Messages,
	)
}
