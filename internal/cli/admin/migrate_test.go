package admin

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationOutcome_Applied(t *testing.T) {
	msg, err := migrationOutcome(nil, 3, false, nil)
	require.NoError(t, err)
	assert.Equal(t, "migrations: applied successfully (version 3)", msg)
}

func TestMigrationOutcome_NoChange(t *testing.T) {
	msg, err := migrationOutcome(migrate.ErrNoChange, 3, false, nil)
	require.NoError(t, err)
	assert.Equal(t, "migrations: database is up to date (version 3)", msg)
}

func TestMigrationOutcome_EmptyDatabase(t *testing.T) {
	msg, err := migrationOutcome(migrate.ErrNoChange, 0, false, migrate.ErrNilVersion)
	require.NoError(t, err)
	assert.Equal(t, "migrations: database is up to date (no migrations applied)", msg)
}

func TestMigrationOutcome_Dirty(t *testing.T) {
	_, err := migrationOutcome(nil, 2, true, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version 2 is dirty")
}

func TestMigrationOutcome_VersionError(t *testing.T) {
	cause := errors.New("connection reset")
	_, err := migrationOutcome(nil, 0, false, cause)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}
