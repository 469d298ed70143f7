package testdb

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	log "github.com/public-forge/go-logger"
)

type contextKey string

// TransactionContextKey is used as the context key to store transaction contexts.
const TransactionContextKey = contextKey("TransactionContextKey")

// Important errors related to transaction handling.
var (
	ErrTxWasRollbacked  = errors.New("the transaction has been rollbacked")               // ErrTxWasRollbacked occurs when a rollback has already been performed.
	ErrNotInTransaction = errors.New("not in a transaction, Begin() has not been called") // ErrNotInTransaction occurs when a transaction is expected but not started.
)

type (
	// ITransactionContext groups statements of the test helpers into one transaction.
	//
	// Begin() starts a transaction (or joins the running one) and returns a UUID.
	// Only the caller holding the UUID of the outermost Begin commits:
	//
	//	txContext, ctx := GetTransactionContext(ctx, holder)
	//	id, err := txContext.Begin()
	//	if err != nil { return err }
	//	defer txContext.Rollback()
	//	txContext.Provider().Exec(...)
	//	return txContext.Commit(id)
	ITransactionContext interface {
		Begin() (uuid.UUID, error) // Begins a transaction and returns its UUID.
		Commit(uuid.UUID) error    // Commits the transaction if the caller holds the transaction UUID.
		Rollback() error           // Rolls back the transaction.
		Provider() *gorm.DB        // Returns the *gorm.DB instance for performing database operations.
	}

	// transactionContext contains transaction details and management logic.
	transactionContext struct {
		logger          log.Logger      // Logger for transaction activity.
		dbHolder        *DatabaseHolder // Database holder providing the connection.
		tx              *gorm.DB        // Database transaction instance.
		transactionUUID *uuid.UUID      // Unique identifier for the transaction.
		rollbacked      bool            // Indicates if the transaction has been rolled back.
	}
)

// GetTransactionContext returns the transaction context stored in ctx, or creates one bound to holder
// and returns it together with a context carrying it.
func GetTransactionContext(ctx context.Context, holder *DatabaseHolder) (ITransactionContext, context.Context) {
	if existing, found := ctx.Value(TransactionContextKey).(ITransactionContext); found {
		return existing, ctx
	}
	txContext := newTransactionContext(log.FromContext(ctx), holder)
	return txContext, context.WithValue(ctx, TransactionContextKey, txContext)
}

// Begin starts a new transaction, or joins the running one, and returns a fresh identifier.
func (c *transactionContext) Begin() (id uuid.UUID, err error) {
	if c.wasRollbacked() {
		err = ErrTxWasRollbacked
		return
	}

	id, err = uuid.NewRandom()
	if err != nil {
		return
	}

	if c.inTransaction() {
		c.logger.Debugf("use existing transaction: %v", c.transactionUUID)
		return
	}

	db, err := c.dbHolder.Get()
	if err != nil {
		return
	}
	tx := db.Begin()
	if err = tx.Error; err != nil {
		c.logger.Errorf("cannot begin transaction (%v): %s", id, err)
		return
	}
	c.tx = tx
	c.transactionUUID = &id
	c.logger.Debugf("new transaction: %v", c.transactionUUID)
	return
}

// Provider returns the transaction handle, or the plain connection outside a transaction.
// It returns nil after a rollback or when no connection can be opened.
func (c *transactionContext) Provider() *gorm.DB {
	if c.wasRollbacked() {
		c.logger.Error("transaction has been rolled back!")
		return nil
	}
	if c.inTransaction() {
		return c.tx
	}
	db, err := c.dbHolder.Get()
	if err != nil {
		c.logger.Errorf("no connection available: %s", err)
		return nil
	}
	return db
}

// Commit finalizes the transaction if id belongs to the outermost Begin; other ids are ignored.
func (c *transactionContext) Commit(id uuid.UUID) error {
	if c.wasRollbacked() {
		return ErrTxWasRollbacked
	}
	if !c.inTransaction() {
		return ErrNotInTransaction
	}
	if *c.transactionUUID != id {
		return nil
	}

	defer c.dispose()

	if err := c.tx.Commit().Error; err != nil {
		c.logger.Errorf("cannot commit transaction: %v; err: %s", c.transactionUUID, err)
		return err
	}
	return nil
}

// Rollback discards the running transaction. Without one it does nothing.
func (c *transactionContext) Rollback() error {
	if c.wasRollbacked() {
		return ErrTxWasRollbacked
	}
	if !c.inTransaction() {
		c.logger.Debug("no active transaction to roll back")
		return nil
	}

	defer c.disposeAfterRollback()

	if err := c.tx.Rollback().Error; err != nil {
		c.logger.Errorf("cannot rollback (%v): %s", c.transactionUUID, err)
		return err
	}
	return nil
}

// inTransaction checks if a transaction is currently active.
func (c *transactionContext) inTransaction() bool {
	return c.tx != nil && c.transactionUUID != nil
}

// dispose clears transaction data after a successful commit or rollback.
func (c *transactionContext) dispose() {
	c.logger.Debugf("disposing transaction (%v)", c.transactionUUID)
	c.tx = nil
	c.transactionUUID = nil
}

// disposeAfterRollback marks the transaction as rolled back and disposes of it.
func (c *transactionContext) disposeAfterRollback() {
	c.rollbacked = true
	c.dispose()
}

// wasRollbacked returns true if the transaction has already been rolled back.
func (c *transactionContext) wasRollbacked() bool {
	return c.rollbacked
}

// newTransactionContext creates a transactionContext with the given logger and dbHolder.
func newTransactionContext(logger log.Logger, dbHolder *DatabaseHolder) *transactionContext {
	return &transactionContext{logger: logger, dbHolder: dbHolder}
}

// Interface compliance check
var _ ITransactionContext = (*transactionContext)(nil)
