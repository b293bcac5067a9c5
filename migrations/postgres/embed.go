// Package postgres embeds the SQL migrations for the postgres storage backend.
package postgres

import "embed"

// FS holds the auth schema migrations, named {version}_{name}.sql.
//
//go:embed auth/*.sql
var FS embed.FS

// Dir is the directory within FS where migrations live.
const Dir = "auth"
