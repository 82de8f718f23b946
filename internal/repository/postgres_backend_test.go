package repository

import (
	"context"
	"testing"
	"time"

	"stock-ledger/internal/database"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func TestPostgresBackend(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()

	dbContainer, err := postgres.Run(
		ctx,
		"postgres:15",
		postgres.WithDatabase("ledger"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Skipf("could not start postgres container: %v", err)
	}
	defer func() {
		if err := dbContainer.Terminate(ctx); err != nil {
			t.Logf("could not teardown postgres container: %v", err)
		}
	}()

	connStr, err := dbContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	db, err := database.Open(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	if err := database.RunMigrations(db, zap.NewNop()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.GetMigrationStatus(db); err != nil {
		t.Fatalf("Failed to read migration status: %v", err)
	}

	backend := NewPostgresBackend(db)
	defer backend.Close()

	exerciseBackend(t, backend)
}
