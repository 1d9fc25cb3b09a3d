// Package migrations embeds the SQL migrations for the photo index.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
