package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations(t *testing.T) {
	migrations, err := LoadMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "registry", migrations[0].Name)
	assert.Contains(t, migrations[0].SQL, "CREATE TABLE IF NOT EXISTS documents")
	assert.Equal(t, 2, migrations[1].Version)
	assert.Contains(t, migrations[1].SQL, "history_outbox")
}

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert doctor: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, IsUniqueViolation(wrapped))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}
