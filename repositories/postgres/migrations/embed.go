package migrations

import "embed"

// FS contains embedded PostgreSQL migrations for the user store.
//
//go:embed *.sql
var FS embed.FS
