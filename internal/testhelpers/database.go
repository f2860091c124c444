package testhelpers

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/database"
)

var quiet = &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

// SetupSQLite returns a migrated sqlite database stored in the test's temp
// directory.
func SetupSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), quiet)
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sqlite handle: %v", err)
	}
	// sqlite allows a single writer
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	migrate(t, db)
	return db
}

// StartPostgres runs an empty pgvector database and returns its DSN.
func StartPostgres(t *testing.T) string {
	t.Helper()
	addr := startContainer(t, testcontainers.ContainerRequest{
		Image: "pgvector/pgvector:pg16",
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		// postgres restarts once after running its init scripts
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}, "5432/tcp")
	return fmt.Sprintf("host=%s port=%s user=testuser password=testpass dbname=testdb sslmode=disable", addr.host, addr.port.Port())
}

// SetupPostgres returns a migrated database in a fresh pgvector container.
func SetupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.Open(StartPostgres(t)), quiet)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	migrate(t, db)
	return db
}

// SetupRedis returns a client for a fresh redis container.
func SetupRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := startContainer(t, testcontainers.ContainerRequest{
		Image:      "redis:7-alpine",
		WaitingFor: wait.ForLog("Ready to accept connections"),
	}, "6379/tcp")

	client := redis.NewClient(&redis.Options{Addr: addr.host + ":" + addr.port.Port()})
	t.Cleanup(func() { _ = client.Close() })
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("failed to reach redis: %v", err)
	}
	return client
}

type endpoint struct {
	host string
	port nat.Port
}

// startContainer starts req exposing port and stops it when the test ends.
// The test is skipped in short mode or when docker is unavailable.
func startContainer(t *testing.T, req testcontainers.ContainerRequest, port nat.Port) endpoint {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}
	ctx := context.Background()

	req.ExposedPorts = []string{string(port)}
	req.WaitingFor = wait.ForAll(wait.ForListeningPort(port), req.WaitingFor).WithStartupTimeout(60 * time.Second)
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("failed to start %s: %v", req.Image, err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate %s: %v", req.Image, err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}
	return endpoint{host: host, port: mapped}
}

func migrate(t *testing.T, db *gorm.DB) {
	t.Helper()
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
}
