// Package migrations embeds the goose SQL migration files for the
// PostgreSQL schema used by the signaling server's persistence store.
package migrations

import "embed"

// FS holds the embedded *.sql migration files, consumed by goose.SetBaseFS.
//
//go:embed *.sql
var FS embed.FS
