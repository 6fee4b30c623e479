// Package migrations embeds the SQL schema migrations for the click counter
// database.
package migrations

import "embed"

// FS holds the ordered *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
