package testdb

import (
	"database/sql"
	"time"

	"github.com/jinzhu/gorm"
	log "github.com/public-forge/go-logger"
)

// Open opens a database connection using the provided DbConfig settings.
// There is a single attempt: a failure is returned as *ConnectionError right away.
// On success, it applies SQL and GORM-specific configurations.
func Open(cfg *DbConfig) (*gorm.DB, error) {
	logger := log.FromDefaultContext()
	logger.Infof("Connecting to %s %s@%s...", cfg.Dialect, cfg.Database, cfg.serverAddress())

	dsn, err := cfg.ConnectionString()
	if err != nil {
		return nil, connectionError(cfg, err)
	}
	db, err := gorm.Open(string(cfg.Dialect), dsn)
	if err != nil {
		logger.Errorf("Connecting to %s %s@%s FAILED: %s", cfg.Dialect, cfg.Database, cfg.serverAddress(), err)
		return nil, connectionError(cfg, err)
	}
	logger.Infof("Successfully connected to %s %s@%s", cfg.Dialect, cfg.Database, cfg.serverAddress())

	configure(db, cfg)
	return db, nil
}

// configure applies the logger, SQL and GORM settings to an open connection.
func configure(db *gorm.DB, cfg *DbConfig) {
	db.SetLogger(log.FromDefaultContext())
	setSQLSettings(db.DB(), cfg)
	setGORMSettings(db, cfg)
}

func connectionError(cfg *DbConfig, err error) *ConnectionError {
	return &ConnectionError{Dialect: cfg.Dialect, Server: cfg.serverAddress(), Database: cfg.Database, Err: err}
}

// setGORMSettings enables or disables statement logging.
func setGORMSettings(db *gorm.DB, cfg *DbConfig) {
	db.LogMode(cfg.LogMode)
}

// setSQLSettings applies SQL settings, including max open connections and connection lifetime.
func setSQLSettings(db *sql.DB, cfg *DbConfig) {
	db.SetMaxOpenConns(cfg.MaxOpenConnections)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnectionMaxLifetimeMS) * time.Millisecond)
}
