// Package migrations holds the schema for every supported SQL dialect.
package migrations

import "embed"

// FS contains one subdirectory of ordered .sql files per dialect
//
//go:embed sqlite/*.sql postgres/*.sql mysql/*.sql
var FS embed.FS
