// Package migrations embeds the answer store schema.
package migrations

import "embed"

// FS holds the SQL migration files applied in filename order.
//
//go:embed *.sql
var FS embed.FS
