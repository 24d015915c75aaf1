// Package migrations embeds the goose SQL migrations of the development
// backend's Postgres schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
