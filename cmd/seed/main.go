package main

import (
	"os"
	"time"

	"touristhub-backend/internal/config"
	"touristhub-backend/internal/db"
	"touristhub-backend/internal/observability"

	"github.com/joho/godotenv"
)

// Seeds the configured admin account plus a small fixture set of guides,
// tourists and service providers. Safe to run repeatedly.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := observability.NewLogger(cfg.Env)

	if err := db.RunMigrations(cfg.DBURL); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	ctx, cancel := config.WithTimeout(30 * time.Second)
	defer cancel()

	if err := db.EnsureAdminUser(ctx, pool, cfg); err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	created, err := db.EnsureSampleUsers(ctx, pool)

	if err != nil {
		log.Error("sample seed failed", "err", err, "created", created)
		os.Exit(1)
	}

	log.Info("seed complete", "created", created)
}
