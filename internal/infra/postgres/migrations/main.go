package migrations

import "github.com/uptrace/bun/migrate"

// Migrations registers one file per version; names come from the file names.
var Migrations = migrate.NewMigrations()
