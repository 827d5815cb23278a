package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/Xunop/e-library/internal/store"
)

// Databases created before file tracking get the table on their next run.
const createMigrationFileTable = `
	CREATE TABLE IF NOT EXISTS migration_file (
		name TEXT NOT NULL PRIMARY KEY,
		version TEXT NOT NULL,
		applied_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now'))
	)
`

// schemaInitialized reports whether the schema exists at all. When it does,
// the migration_file table is created if missing.
func (d *DB) schemaInitialized(ctx context.Context) (bool, error) {
	exist, err := d.schemaObjectExists(ctx, "table", "migration_history")
	if err != nil || !exist {
		return false, err
	}
	if _, err := d.ExecContext(ctx, createMigrationFileTable); err != nil {
		return false, errors.Wrap(err, "failed to create migration_file table")
	}
	return true, nil
}

func (d *DB) UpsertMigrationHistory(ctx context.Context, upsert *store.UpsertMigrationHistory) (*store.MigrationHistory, error) {
	stmt := `
		INSERT INTO migration_history (version) VALUES (?)
		ON CONFLICT(version) DO UPDATE SET version = EXCLUDED.version
		RETURNING version, created_ts
	`
	history := &store.MigrationHistory{}
	if err := d.QueryRowContext(ctx, stmt, upsert.Version).Scan(&history.Version, &history.CreatedTs); err != nil {
		return nil, errors.Wrapf(err, "failed to record schema version %s", upsert.Version)
	}
	return history, nil
}

// FindMigrationHistoryList returns the recorded versions, newest first, each
// with the migration files applied for it.
func (d *DB) FindMigrationHistoryList(ctx context.Context, find *store.FindMigrationHistory) ([]*store.MigrationHistory, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.Version != nil {
		where, args = append(where, "h.version = ?"), append(args, *find.Version)
	}
	query := `
		SELECT h.version, h.created_ts, f.name
		FROM migration_history h
		LEFT JOIN migration_file f ON f.version = h.version
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY h.created_ts DESC, h.version DESC, f.name ASC
	`
	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*store.MigrationHistory, 0)
	byVersion := map[string]*store.MigrationHistory{}
	for rows.Next() {
		var (
			version   string
			createdTs int64
			name      sql.NullString
		)
		if err := rows.Scan(&version, &createdTs, &name); err != nil {
			return nil, err
		}
		history, ok := byVersion[version]
		if !ok {
			history = &store.MigrationHistory{Version: version, CreatedTs: createdTs, Files: []string{}}
			byVersion[version] = history
			list = append(list, history)
		}
		if name.Valid {
			history.Files = append(history.Files, name.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// appliedMigrationFiles returns the set of file names already applied for
// a schema version.
func (d *DB) appliedMigrationFiles(ctx context.Context, version string) (map[string]bool, error) {
	rows, err := d.QueryContext(ctx, "SELECT name FROM migration_file WHERE version = ?", version)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list applied migration files")
	}
	defer rows.Close()

	applied := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

// applyMigrationFile runs one script and records it in the same transaction,
// so a failed script is retried on the next run and an applied one never is.
func (d *DB) applyMigrationFile(ctx context.Context, name, version, stmt string) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "failed to execute statement")
	}
	if err := recordMigrationFile(ctx, tx, name, version); err != nil {
		return err
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func recordMigrationFile(ctx context.Context, db execer, name, version string) error {
	stmt := "INSERT INTO migration_file (name, version) VALUES (?, ?) ON CONFLICT(name) DO NOTHING"
	if _, err := db.ExecContext(ctx, stmt, name, version); err != nil {
		return errors.Wrapf(err, "failed to record migration file %s", name)
	}
	return nil
}

// schemaObjectExists looks up a table or index by name.
func (d *DB) schemaObjectExists(ctx context.Context, kind, name string) (bool, error) {
	var found string
	err := d.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = ? AND name = ?", kind, name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
