// Package migrations carries the label store schema as embedded SQL
// files, applied in filename order when a store opens.
package migrations

import "embed"

// FS holds the schema migration files.
//
//go:embed *.sql
var FS embed.FS
