package testdb

import "fmt"

// ConnectionError is returned when the database connection cannot be opened.
type ConnectionError struct {
	Dialect  Dialect
	Server   string
	Database string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to %s %s@%s: %v", e.Dialect, e.Database, e.Server, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError is returned when the server rejects a statement.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %q failed: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
