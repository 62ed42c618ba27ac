package migrations

import "embed"

// FS holds the schema migrations for each supported database, under sqlite/ and postgres/
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
