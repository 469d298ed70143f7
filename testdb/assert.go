package testdb

import (
	"math"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestingT is the subset of *testing.T the assertion helpers need.
type TestingT interface {
	require.TestingT
	Helper()
}

// AssertAlmostEqual checks that the difference of expected and actual rounds to zero at places decimal places.
func AssertAlmostEqual(t TestingT, expected, actual float64, places int) bool {
	t.Helper()
	diff := math.Round((expected - actual) * math.Pow10(places))
	return assert.Truef(t, diff == 0, "%v != %v within %d places", expected, actual, places)
}

// RequireRow fetches the single production row for id and stops the test unless exactly one exists.
func RequireRow(t TestingT, holder *DatabaseHolder, table string, id int64) Row {
	t.Helper()
	result, err := QueryRow(holder, table, id)
	require.NoError(t, err)
	row, ok := result.One()
	require.Truef(t, ok, "expected one row for %d in %s, got %s (%d)", id, table, result.Kind(), result.Len())
	return row
}

// AssertMissingRow checks that no production row exists for id.
func AssertMissingRow(t TestingT, holder *DatabaseHolder, table string, id int64) bool {
	t.Helper()
	result, err := QueryRow(holder, table, id)
	require.NoError(t, err)
	return assert.Equalf(t, Empty, result.Kind(), "unexpected row for %d in %s", id, table)
}

// AssertNoDuplicates checks that every osm_id occurs at most once in the production table.
func AssertNoDuplicates(t TestingT, holder *DatabaseHolder, table string) bool {
	t.Helper()
	duplicates, err := QueryDuplicates(holder, table)
	require.NoError(t, err)
	return assert.Emptyf(t, duplicates, "duplicate osm_ids in %s", table)
}

// AssertTableExists checks that schema.table exists.
func AssertTableExists(t TestingT, holder *DatabaseHolder, schema, table string) bool {
	t.Helper()
	exists, err := TableExists(holder, schema, table)
	require.NoError(t, err)
	return assert.Truef(t, exists, "table %s.%s does not exist", schema, table)
}

// AssertTableMissing checks that schema.table does not exist.
func AssertTableMissing(t TestingT, holder *DatabaseHolder, schema, table string) bool {
	t.Helper()
	exists, err := TableExists(holder, schema, table)
	require.NoError(t, err)
	return assert.Falsef(t, exists, "table %s.%s exists", schema, table)
}
