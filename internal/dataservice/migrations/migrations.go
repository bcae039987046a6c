// Package migrations embeds the goose SQL migration files for DataService's
// schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
