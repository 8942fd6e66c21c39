// Package migrations embeds the SQL migrations so the binary carries its schema.
package migrations

import "embed"

//go:embed postgres/*.sql
var Postgres embed.FS

const PostgresDir = "postgres"
