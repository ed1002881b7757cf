package migrations

import "embed"

// Files holds the catalog schema migrations, applied in version order.
//
//go:embed *.sql
var Files embed.FS
