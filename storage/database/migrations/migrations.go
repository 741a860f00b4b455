// Package migrations embeds the SQL migration files so binaries can migrate
// without shipping them separately.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
