package sqldb

import "time"

// Supported database/sql driver names
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config holds SQL connection settings
type Config struct {
	// Driver is DriverSQLite or DriverPostgres
	Driver string

	// DSN is a file path for sqlite3 (":memory:" works) or a
	// connection string for postgres
	DSN string

	MaxOpenConns int
	QueryTimeout time.Duration
}

// DefaultConfig returns a file-backed sqlite configuration
func DefaultConfig() Config {
	return Config{
		Driver:       DriverSQLite,
		DSN:          "lettercrush.db",
		MaxOpenConns: 4,
		QueryTimeout: 5 * time.Second,
	}
}
