package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"

	"github.com/steven-d-pennington/restricted-diet-app/backend/config"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/database"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/logger"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	dir := flag.String("dir", "migrations", "Directory holding the SQL migrations")
	flag.Parse()

	log, err := logger.New(config.GetEnvironment().LogMode(), os.Getenv("LOG_LEVEL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatal("DATABASE_URL is not set and configuration failed to load", "error", err)
		}
		dsn = cfg.PostgresDSN()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	ctx := context.Background()
	m := database.NewSQLMigrator(db, *dir, log)
	if *rollback {
		name, err := m.Rollback(ctx)
		if err != nil {
			log.Fatal("rollback failed", "error", err)
		}
		fmt.Printf("Successfully rolled back migration: %s\n", name)
		return
	}

	applied, err := m.Up(ctx)
	if err != nil {
		log.Fatal("migration failed", "error", err, "applied", len(applied))
	}
	fmt.Printf("All migrations applied successfully (%d new).\n", len(applied))
}
