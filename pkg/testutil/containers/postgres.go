//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"medledger/internal/platform/config"
	pg "medledger/internal/platform/postgres"
)

type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts Postgres and applies the embedded migrations.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("medledger"),
		tcpostgres.WithUsername("medledger"),
		tcpostgres.WithPassword("medledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := pg.Open(ctx, config.DatabaseConfig{URL: dsn, MaxOpenConns: 50})
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres: %v", err)
	}
	if _, err := pg.Migrate(ctx, db); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to migrate postgres: %v", err)
	}

	return &PostgresContainer{Container: container, DSN: dsn, DB: db}
}

// TruncateTables empties the named tables and restarts their identities.
// The patient counter row is reset rather than removed.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	stmt := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", "))
	if _, err := p.DB.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("truncate %v: %w", tables, err)
	}
	if _, err := p.DB.ExecContext(ctx, `UPDATE patient_id_seq SET last_id = 0`); err != nil {
		return fmt.Errorf("reset patient counter: %w", err)
	}
	return nil
}

// RegistryTables lists every registry and history table in dependency order.
var RegistryTables = []string{
	"history_outbox", "history_entries",
	"documents", "access_grants", "patients", "doctors",
}
