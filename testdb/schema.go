package testdb

import (
	"errors"
	"fmt"
	"regexp"
)

// Schema names used by the imposm3 test suite.
const (
	SchemaImport     = "imposm3testimport"     // SchemaImport is populated by the importer before deployment.
	SchemaProduction = "imposm3testproduction" // SchemaProduction holds the live tables that queries read from.
	SchemaBackup     = "imposm3testbackup"     // SchemaBackup holds the previous production tables for rollback.
)

// ErrInvalidIdentifier is returned when a schema or table name fails the identifier allow-list.
var ErrInvalidIdentifier = errors.New("invalid SQL identifier")

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,127}$`)

// Schemas is the import/production/backup namespace triple.
type Schemas struct {
	Import     string
	Production string
	Backup     string
}

// DefaultSchemas returns the schema triple the imposm3 tests deploy into.
func DefaultSchemas() Schemas {
	return Schemas{
		Import:     SchemaImport,
		Production: SchemaProduction,
		Backup:     SchemaBackup,
	}
}

// All returns the schemas in import, production, backup order.
func (s Schemas) All() []string {
	return []string{s.Import, s.Production, s.Backup}
}

// quoteIdent validates name against the identifier allow-list and returns it double quoted.
func quoteIdent(name string) (string, error) {
	if !identifierPattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return `"` + name + `"`, nil
}

// qualifiedTable returns "schema"."table" with both parts validated.
func qualifiedTable(schema, table string) (string, error) {
	s, err := quoteIdent(schema)
	if err != nil {
		return "", err
	}
	t, err := quoteIdent(table)
	if err != nil {
		return "", err
	}
	return s + "." + t, nil
}
