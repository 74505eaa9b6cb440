// Package migrations embeds the SQL migrations for the blob cache database.
package migrations

import "embed"

// FS holds every migration file, named NNN_name.up.sql / NNN_name.down.sql.
//
//go:embed *.sql
var FS embed.FS
