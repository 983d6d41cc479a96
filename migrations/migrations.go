// Package migrations embeds the database schema.
package migrations

import _ "embed"

// Schema is the full idempotent database schema.
//
//go:embed schema.sql
var Schema string
