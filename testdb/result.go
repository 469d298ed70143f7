package testdb

import (
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
)

// Row is one fetched table row.
type Row struct {
	Columns  map[string]interface{} // Columns maps column name to the driver value.
	Geometry orb.Geometry           // Geometry is decoded from the geometry column, nil for NULL.
	Tags     map[string]string      // Tags is decoded from the tags column when the table has one.
}

// Get returns the raw value of a column and whether the column exists.
func (r Row) Get(column string) (interface{}, bool) {
	v, ok := r.Columns[column]
	return v, ok
}

// Int64 returns a column as int64.
func (r Row) Int64(column string) (int64, error) {
	switch v := r.Columns[column].(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("column %q: cannot convert %T to int64", column, v)
	}
}

// String returns a column as string; NULL and missing columns yield "".
func (r Row) String(column string) string {
	switch v := r.Columns[column].(type) {
	case nil:
		return ""
	case []byte:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// ResultKind tells how many rows a RowResult holds.
type ResultKind int

const (
	Empty ResultKind = iota // Empty means no row matched.
	One                     // One means exactly one row matched.
	Many                    // Many means several rows share the id.
)

func (k ResultKind) String() string {
	switch k {
	case Empty:
		return "empty"
	case One:
		return "one"
	default:
		return "many"
	}
}

// RowResult is the outcome of QueryRow: Empty, One(row) or Many(rows).
type RowResult struct {
	rows []Row
}

func newRowResult(rows []Row) RowResult {
	return RowResult{rows: rows}
}

// Kind reports which variant the result holds.
func (r RowResult) Kind() ResultKind {
	switch len(r.rows) {
	case 0:
		return Empty
	case 1:
		return One
	default:
		return Many
	}
}

// One returns the row of a One result. ok is false for Empty and Many.
func (r RowResult) One() (row Row, ok bool) {
	if len(r.rows) != 1 {
		return Row{}, false
	}
	return r.rows[0], true
}

// Rows returns every row in server order; nil for Empty.
func (r RowResult) Rows() []Row {
	return r.rows
}

// Len returns the number of rows.
func (r RowResult) Len() int {
	return len(r.rows)
}

// Duplicate is an osm_id found more than once in a table.
type Duplicate struct {
	OsmID int64
	Count int64
}
