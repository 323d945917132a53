// Package migrations embeds the SQL migrations of the Postgres document store.
package migrations

import "embed"

// FS contains the embedded SQL migration files.
//
//go:embed *.sql
var FS embed.FS
