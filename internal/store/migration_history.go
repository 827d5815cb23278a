package store

// MigrationHistory marks a schema version as reached. Files lists the
// migration scripts recorded for that version, relative to the migration
// directory, e.g. "0.1/00001_book_instance_status_index.sql".
type MigrationHistory struct {
	Version   string
	CreatedTs int64
	Files     []string
}

type UpsertMigrationHistory struct {
	Version string
}

type FindMigrationHistory struct {
	Version *string
}
