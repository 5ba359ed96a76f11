// Package dbtest starts a shared PostgreSQL container for integration tests
// and applies the embedded migrations to it.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/JaimeStill/wastewise/migrations"
)

var (
	once      sync.Once
	sharedDSN string
	initErr   error
)

// Open returns a connection to the shared, migrated test database. The
// container is started once per test binary and lives until the process
// exits; the connection is closed via t.Cleanup. Tests are skipped under
// -short or when no container runtime is reachable.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping database integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	once.Do(func() {
		sharedDSN, initErr = startContainerAndMigrate()
	})
	if initErr != nil {
		t.Fatalf("dbtest: failed to setup test database: %v", initErr)
	}

	db, err := sql.Open("pgx", sharedDSN)
	if err != nil {
		t.Fatalf("dbtest: open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// Reset deletes every classification record. Seeded categories are kept.
func Reset(t *testing.T, db *sql.DB) {
	t.Helper()
	if _, err := db.ExecContext(context.Background(), "TRUNCATE classification_history"); err != nil {
		t.Fatalf("dbtest: reset: %v", err)
	}
}

// DSN returns the shared database connection string. Open must be called first.
func DSN() string {
	return sharedDSN
}

func startContainerAndMigrate() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "wastewise",
			"POSTGRES_PASSWORD": "wastewise",
			"POSTGRES_DB":       "wastewise",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}

	dsn := fmt.Sprintf("postgres://wastewise:wastewise@%s:%s/wastewise?sslmode=disable", host, port.Port())

	if err := migrations.Up(dsn); err != nil {
		return "", err
	}

	return dsn, nil
}
