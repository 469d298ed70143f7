package testdb

import (
	"errors"
	"sync"

	"github.com/jinzhu/gorm"
	log "github.com/public-forge/go-logger"
)

// OpenFunc opens a new connection for a configuration.
type OpenFunc func(cfg *DbConfig) (*gorm.DB, error)

// DatabaseHolder lazily opens a single connection and hands the same handle to every caller until Close.
// A holder is safe for concurrent use.
type DatabaseHolder struct {
	mu           sync.Mutex
	config       *DbConfig
	open         OpenFunc
	dbConnection *gorm.DB // Holds the live connection, nil when closed.
}

// NewDBHolderInstance creates a DatabaseHolder that opens its connection on first use.
func NewDBHolderInstance(config *DbConfig) *DatabaseHolder {
	return NewDBHolderWithOpener(config, Open)
}

// NewDBHolderWithOpener creates a DatabaseHolder that uses open to establish connections.
func NewDBHolderWithOpener(config *DbConfig, open OpenFunc) *DatabaseHolder {
	if config == nil {
		config = DefaultConfig()
	}
	return &DatabaseHolder{config: config, open: open}
}

// NewDBHolder creates a DatabaseHolder around an already open connection.
func NewDBHolder(db *gorm.DB, config *DbConfig) *DatabaseHolder {
	h := NewDBHolderInstance(config)
	h.dbConnection = db
	return h
}

// Config returns the configuration the holder connects with.
func (h *DatabaseHolder) Config() *DbConfig {
	return h.config
}

// Get returns the cached connection, opening it first if none is live.
// Open failures are returned as *ConnectionError and nothing is cached.
func (h *DatabaseHolder) Get() (*gorm.DB, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.dbConnection != nil {
		return h.dbConnection, nil
	}
	db, err := h.open(h.config)
	if err != nil {
		var connErr *ConnectionError
		if !errors.As(err, &connErr) {
			err = connectionError(h.config, err)
		}
		return nil, err
	}
	h.dbConnection = db
	return db, nil
}

// Close closes the cached connection and forgets it. Closing a holder without a live connection is a no-op.
func (h *DatabaseHolder) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.dbConnection == nil {
		return nil
	}
	db := h.dbConnection
	h.dbConnection = nil
	log.FromDefaultContext().Debugf("closing %s connection to %s", h.config.Dialect, h.config.Database)
	return db.Close()
}
