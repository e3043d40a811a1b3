package database

import (
	"database/sql"
	"regexp"
	"strconv"
	"strings"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) string

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// SupportsLastInsertId returns true if the driver supports LastInsertId()
	SupportsLastInsertId() bool

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir returns the subdirectory name for migrations (e.g., "sqlite", "postgres")
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL to create the migrations tracking table
	CreateMigrationsTableQuery() string

	// InsertIgnore turns a plain "INSERT INTO" statement into one that silently
	// skips rows violating a unique or primary key constraint
	InsertIgnore(query string) string

	// UpsertSettings returns the statement that writes a settings row by name
	UpsertSettings() string
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

// replaceInsertPrefix swaps the leading INSERT INTO keyword for prefix
func replaceInsertPrefix(query, prefix string) string {
	trimmed := strings.TrimSpace(query)
	if len(trimmed) >= len("INSERT INTO") && strings.EqualFold(trimmed[:len("INSERT INTO")], "INSERT INTO") {
		return prefix + trimmed[len("INSERT INTO"):]
	}
	return query
}
