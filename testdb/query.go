package testdb

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq/hstore"
)

// QueryRow fetches every row of the production table whose osm_id equals osmID.
func QueryRow(holder *DatabaseHolder, table string, osmID int64) (RowResult, error) {
	cfg := holder.Config()
	qualified, err := qualifiedTable(cfg.schemas().Production, table)
	if err != nil {
		return RowResult{}, err
	}
	db, err := holder.Get()
	if err != nil {
		return RowResult{}, err
	}

	query := cfg.Dialect.rowQuery(qualified)
	rows, err := db.Raw(query, osmID).Rows()
	if err != nil {
		return RowResult{}, &QueryError{Query: query, Err: err}
	}
	defer rows.Close()

	var results []Row
	for rows.Next() {
		row, err := scanRow(rows, cfg.Dialect)
		if err != nil {
			return RowResult{}, &QueryError{Query: query, Err: err}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return RowResult{}, &QueryError{Query: query, Err: err}
	}
	return newRowResult(results), nil
}

// QueryDuplicates lists the osm_ids stored more than once in the production table, ordered by id.
func QueryDuplicates(holder *DatabaseHolder, table string) ([]Duplicate, error) {
	cfg := holder.Config()
	qualified, err := qualifiedTable(cfg.schemas().Production, table)
	if err != nil {
		return nil, err
	}
	db, err := holder.Get()
	if err != nil {
		return nil, err
	}

	query := cfg.Dialect.duplicatesQuery(qualified)
	rows, err := db.Raw(query).Rows()
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	defer rows.Close()

	duplicates := []Duplicate{}
	for rows.Next() {
		var d Duplicate
		if err := rows.Scan(&d.OsmID, &d.Count); err != nil {
			return nil, &QueryError{Query: query, Err: err}
		}
		duplicates = append(duplicates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	return duplicates, nil
}

// scanRow reads the current row into a Row, decoding the geometry and tags columns.
func scanRow(rows *sql.Rows, dialect Dialect) (Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return Row{}, err
	}
	values := make([]interface{}, len(columns))
	dest := make([]interface{}, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return Row{}, err
	}

	row := Row{Columns: make(map[string]interface{}, len(columns))}
	for i, name := range columns {
		row.Columns[name] = values[i]
	}

	if wkbValue, ok := row.Columns[geometryWKBColumn]; ok {
		delete(row.Columns, geometryWKBColumn)
		if row.Geometry, err = decodeGeometry(wkbValue); err != nil {
			return Row{}, fmt.Errorf("decoding %s: %w", geometryColumn, err)
		}
	}
	if tagsValue, ok := row.Columns[tagsColumn]; ok && tagsValue != nil {
		if row.Tags, err = decodeTags(tagsValue, dialect); err != nil {
			return Row{}, fmt.Errorf("decoding %s: %w", tagsColumn, err)
		}
	}
	return row, nil
}

// decodeTags reads an hstore (postgres) or JSON object (mssql) tags column.
func decodeTags(value interface{}, dialect Dialect) (map[string]string, error) {
	if s, ok := value.(string); ok {
		value = []byte(s)
	}
	data, ok := value.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected type %T", value)
	}

	tags := make(map[string]string)
	if dialect == DialectPostgres {
		var h hstore.Hstore
		if err := h.Scan(data); err != nil {
			return nil, err
		}
		for k, v := range h.Map {
			if v.Valid {
				tags[k] = v.String
			}
		}
		return tags, nil
	}
	if len(data) == 0 {
		return tags, nil
	}
	if err := json.Unmarshal(data, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}
