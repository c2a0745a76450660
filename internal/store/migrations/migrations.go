// Package migrations embeds the goose SQL migrations for the users database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
