package testdb

import (
	"fmt"

	// gorm dialect and driver for SQL Server
	_ "github.com/jinzhu/gorm/dialects/mssql"
	// driver for postgres
	_ "github.com/lib/pq"
)

// Dialect names the SQL flavour spoken by the test database.
type Dialect string

const (
	DialectSQLServer Dialect = "mssql"    // DialectSQLServer targets Microsoft SQL Server.
	DialectPostgres  Dialect = "postgres" // DialectPostgres targets PostgreSQL with PostGIS.
)

// geometryColumn is the column decoded into Row.Geometry.
const geometryColumn = "geometry"

// geometryWKBColumn is the alias under which the WKB projection of geometryColumn is selected.
const geometryWKBColumn = "geometry_wkb"

// tagsColumn is decoded into Row.Tags when present.
const tagsColumn = "tags"

// rowQuery selects all rows of a qualified table for one osm_id, plus a WKB projection of the geometry.
func (d Dialect) rowQuery(qualified string) string {
	var wkb string
	switch d {
	case DialectPostgres:
		wkb = "ST_AsBinary(geometry)"
	default:
		wkb = "geometry.STAsBinary()"
	}
	return fmt.Sprintf("SELECT *, %s AS %s FROM %s WHERE osm_id = ?", wkb, geometryWKBColumn, qualified)
}

// duplicatesQuery lists osm_ids occurring more than once in a qualified table.
func (d Dialect) duplicatesQuery(qualified string) string {
	return fmt.Sprintf("SELECT osm_id, COUNT(osm_id) FROM %s GROUP BY osm_id HAVING COUNT(osm_id) > 1 ORDER BY osm_id", qualified)
}

// tableExistsQuery returns a single boolean for (table_name, table_schema) parameters.
func (d Dialect) tableExistsQuery() string {
	switch d {
	case DialectPostgres:
		return "SELECT EXISTS(SELECT 1 FROM information_schema.tables WHERE table_name = ? AND table_schema = ?)"
	default:
		return "SELECT CAST(COUNT(*) AS BIT) FROM information_schema.tables WHERE table_name = ? AND table_schema = ?"
	}
}

// dropSchemaStatement returns a statement that drops schema and its tables only if the schema exists.
func (d Dialect) dropSchemaStatement(schema string) (string, []interface{}, error) {
	quoted, err := quoteIdent(schema)
	if err != nil {
		return "", nil, err
	}
	switch d {
	case DialectPostgres:
		return fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", quoted), nil, nil
	default:
		// sys.schemas is checked first; SQL Server refuses to drop a schema that still owns tables.
		stmt := fmt.Sprintf(`IF EXISTS (SELECT 1 FROM sys.schemas WHERE name = ?)
BEGIN
	DECLARE @drop NVARCHAR(MAX) = N'';
	SELECT @drop = @drop + N'DROP TABLE ' + QUOTENAME(s.name) + N'.' + QUOTENAME(t.name) + N'; '
		FROM sys.tables t JOIN sys.schemas s ON t.schema_id = s.schema_id WHERE s.name = ?;
	EXEC sp_executesql @drop;
	DROP SCHEMA %s;
END`, quoted)
		return stmt, []interface{}{schema, schema}, nil
	}
}
