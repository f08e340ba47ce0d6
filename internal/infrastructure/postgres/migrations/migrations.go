// Package migrations embeds the Postgres schema, applied with goose at startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
