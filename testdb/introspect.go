package testdb

import (
	"context"

	log "github.com/public-forge/go-logger"
)

// TableExists reports whether information_schema lists table in schema. Names are matched exactly
// as the server's catalog compares them.
func TableExists(holder *DatabaseHolder, schema, table string) (bool, error) {
	db, err := holder.Get()
	if err != nil {
		return false, err
	}
	query := holder.Config().Dialect.tableExistsQuery()
	var exists bool
	if err := db.Raw(query, table, schema).Row().Scan(&exists); err != nil {
		return false, &QueryError{Query: query, Err: err}
	}
	return exists, nil
}

// DropSchemas drops the import, production and backup schemas with everything in them.
// Schemas that do not exist are skipped. All drops run in one transaction that is committed once at the end.
func DropSchemas(ctx context.Context, holder *DatabaseHolder) (err error) {
	logger := log.FromContext(ctx)
	cfg := holder.Config()

	txContext, _ := GetTransactionContext(ctx, holder)
	id, err := txContext.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = txContext.Rollback()
		}
	}()

	for _, schema := range cfg.schemas().All() {
		stmt, args, err := cfg.Dialect.dropSchemaStatement(schema)
		if err != nil {
			return err
		}
		logger.Debugf("dropping schema %s", schema)
		if err := txContext.Provider().Exec(stmt, args...).Error; err != nil {
			return &QueryError{Query: stmt, Err: err}
		}
	}
	return txContext.Commit(id)
}
