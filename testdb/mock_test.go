package testdb

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/require"
)

// newMockHolder returns a holder pre-seeded with a gorm connection backed by sqlmock.
func newMockHolder(t *testing.T, dialect Dialect) (*DatabaseHolder, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(string(dialect), db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := DefaultConfig()
	cfg.Dialect = dialect
	return NewDBHolder(gormDB, cfg), mock
}
