package testdb

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// DbConfig holds the settings required to connect to the database the imposm3 tests run against.
type DbConfig struct {
	Dialect                 Dialect // Dialect selects the server flavour ("mssql" or "postgres").
	Server                  string  // Server is the database server address (e.g., "localhost" or an IP).
	Instance                string  // Instance is the optional SQL Server named instance.
	User                    string  // User is the username for authenticating to the database.
	Password                string  // Password is the password for the specified User.
	Database                string  // Database is the name of the specific database to connect to.
	SSLMode                 string  // SSLMode is passed to postgres (e.g., "disable").
	LogMode                 bool    // LogMode enables or disables SQL query logging.
	MaxOpenConnections      int     // MaxOpenConnections defines the maximum number of open connections, 0 means unlimited.
	ConnectionMaxLifetimeMS int     // ConnectionMaxLifetimeMS sets the maximum time (in milliseconds) a connection can be reused.
	Schemas                 Schemas // Schemas names the import, production and backup schemas.
}

// DefaultConfig returns the static defaults the test suite starts from.
func DefaultConfig() *DbConfig {
	return &DbConfig{
		Dialect:  DialectSQLServer,
		Server:   "localhost",
		User:     "osm",
		Password: "osm",
		Database: "osm",
		SSLMode:  "disable",
		Schemas:  DefaultSchemas(),
	}
}

// ConfigFromEnv loads the defaults and overrides them with the SQL* environment variables.
func ConfigFromEnv() *DbConfig {
	cfg := DefaultConfig()
	overlay := map[string]*string{
		"SQLHOST":     &cfg.Server,
		"SQLINSTANCE": &cfg.Instance,
		"SQLUSER":     &cfg.User,
		"SQLPASSWORD": &cfg.Password,
		"SQLDATABASE": &cfg.Database,
		"SQLSSLMODE":  &cfg.SSLMode,
	}
	for key, field := range overlay {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*field = v
		}
	}
	if v := strings.TrimSpace(os.Getenv("SQLDIALECT")); v != "" {
		cfg.Dialect = Dialect(strings.ToLower(v))
	}
	return cfg
}

// schemas returns the configured schemas, falling back to the defaults when unset.
func (c *DbConfig) schemas() Schemas {
	if c.Schemas == (Schemas{}) {
		return DefaultSchemas()
	}
	return c.Schemas
}

func (c *DbConfig) serverAddress() string {
	if c.Instance == "" {
		return c.Server
	}
	return c.Server + `\` + c.Instance
}

// ConnectionString builds the DSN handed to the database driver.
// SQL Server gets a sqlserver:// URL, postgres a key/value list with every value quoted.
func (c *DbConfig) ConnectionString() (string, error) {
	switch c.Dialect {
	case DialectSQLServer:
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(c.User, c.Password),
			Host:     c.Server,
			RawQuery: url.Values{"database": {c.Database}}.Encode(),
		}
		if c.Instance != "" {
			u.Path = "/" + c.Instance
		}
		return u.String(), nil
	case DialectPostgres:
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=%s",
			quotePgValue(c.Server), quotePgValue(c.User), quotePgValue(c.Password),
			quotePgValue(c.Database), quotePgValue(sslMode)), nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", c.Dialect)
	}
}

// quotePgValue quotes a libpq connection value: single quotes around it, ' and \ backslash-escaped.
func quotePgValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// ImporterConnection builds the -connection argument understood by the imposm3 binary.
func (c *DbConfig) ImporterConnection() (string, error) {
	switch c.Dialect {
	case DialectSQLServer:
		dsn, err := c.ConnectionString()
		if err != nil {
			return "", err
		}
		return "mssql://" + dsn, nil
	case DialectPostgres:
		u := url.URL{
			Scheme: "postgis",
			User:   url.UserPassword(c.User, c.Password),
			Host:   c.Server,
			Path:   "/" + c.Database,
		}
		if c.SSLMode != "" {
			u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", c.Dialect)
	}
}
