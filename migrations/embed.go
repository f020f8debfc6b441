// Package migrations embeds the directory schema for cmd/migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
