package testdb

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingOpener opens a fresh sqlmock-backed connection per call and keeps the mocks.
type countingOpener struct {
	t     *testing.T
	mocks []sqlmock.Sqlmock
}

func (o *countingOpener) open(cfg *DbConfig) (*gorm.DB, error) {
	db, mock, err := sqlmock.New()
	require.NoError(o.t, err)
	o.mocks = append(o.mocks, mock)
	return gorm.Open(string(cfg.Dialect), db)
}

func TestDatabaseHolder_GetReturnsCachedHandle(t *testing.T) {
	opener := &countingOpener{t: t}
	holder := NewDBHolderWithOpener(DefaultConfig(), opener.open)

	first, err := holder.Get()
	require.NoError(t, err)
	second, err := holder.Get()
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Len(t, opener.mocks, 1)
}

func TestDatabaseHolder_GetAfterCloseOpensNewHandle(t *testing.T) {
	opener := &countingOpener{t: t}
	holder := NewDBHolderWithOpener(DefaultConfig(), opener.open)

	first, err := holder.Get()
	require.NoError(t, err)

	opener.mocks[0].ExpectClose()
	require.NoError(t, holder.Close())
	assert.NoError(t, opener.mocks[0].ExpectationsWereMet())

	second, err := holder.Get()
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Len(t, opener.mocks, 2)
}

func TestDatabaseHolder_CloseWithoutConnection(t *testing.T) {
	opener := &countingOpener{t: t}
	holder := NewDBHolderWithOpener(DefaultConfig(), opener.open)

	assert.NoError(t, holder.Close())
	assert.NoError(t, holder.Close())
	assert.Empty(t, opener.mocks)
}

func TestDatabaseHolder_CloseTwice(t *testing.T) {
	holder, mock := newMockHolder(t, DialectSQLServer)

	mock.ExpectClose()
	assert.NoError(t, holder.Close())
	assert.NoError(t, holder.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseHolder_OpenFailureIsNotRetried(t *testing.T) {
	refused := errors.New("connection refused")
	calls := 0
	holder := NewDBHolderWithOpener(DefaultConfig(), func(cfg *DbConfig) (*gorm.DB, error) {
		calls++
		return nil, refused
	})

	db, err := holder.Get()
	assert.Nil(t, db)
	assert.Equal(t, 1, calls)

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.ErrorIs(t, err, refused)
	assert.Equal(t, "osm", connErr.Database)

	// nothing was cached, so Close stays a no-op
	assert.NoError(t, holder.Close())
}
