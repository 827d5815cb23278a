package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/store"
	"github.com/Xunop/e-library/internal/util"
	"github.com/Xunop/e-library/internal/version"
)

type DB struct {
	*sql.DB
	path string
}

func init() {
	// display_genre(genre_id, name) keeps the first three names by genre id.
	util.RegisterSortedConcatenate("display_genre", ", ", 3)
}

// pragmas are applied by the driver to every pooled connection.
const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// NewDB opens the sqlite database file at dsn.
func NewDB(dsn string) (*DB, error) {
	if dsn == "" {
		return nil, errors.New("Database URL is required")
	}

	path := dsn
	if i := strings.IndexByte(dsn, '?'); i >= 0 {
		path = dsn[:i]
		dsn += "&" + pragmas
	} else {
		dsn += "?" + pragmas
	}

	d, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	return &DB{DB: d, path: strings.TrimPrefix(path, "file:")}, nil
}

func (d *DB) Close() error {
	return d.DB.Close()
}

//go:embed migration
var migrationFS embed.FS

//go:embed seed
var seedFS embed.FS

const latestSchemaFileName = "LATEST_SCHEMA.sql"

// Migrate creates the schema on a fresh database, or applies the minor
// version migrations newer than the last recorded one.
func (d *DB) Migrate(ctx context.Context) error {
	currentVersion := version.GetCurrentVersion()
	log.Info("Migrate database", zap.String("version", currentVersion), zap.String("path", d.path))

	initialized, err := d.schemaInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check database schema")
	}
	if !initialized {
		if err := d.applyLatestSchema(ctx); err != nil {
			return errors.Wrap(err, "failed to apply latest schema")
		}
		// The latest schema already includes every migration up to this version.
		if err := d.markMigrationsApplied(ctx, currentVersion); err != nil {
			return err
		}
		if _, err := d.UpsertMigrationHistory(ctx, &store.UpsertMigrationHistory{
			Version: version.GetSchemaVersion(currentVersion),
		}); err != nil {
			return errors.Wrap(err, "failed to upsert migration history")
		}
		return nil
	}

	migrationHistoryList, err := d.FindMigrationHistoryList(ctx, &store.FindMigrationHistory{})
	if err != nil {
		return errors.Wrap(err, "failed to find migration history list")
	}
	if len(migrationHistoryList) == 0 {
		minorVersion := version.GetMinorVersion(currentVersion)
		if err := d.applyMigrationForMinorVersion(ctx, minorVersion); err != nil {
			return errors.Wrapf(err, "failed to apply version %s migration", minorVersion)
		}
		return nil
	}

	migrationHistoryVersionList := []string{}
	for _, migrationHistory := range migrationHistoryList {
		migrationHistoryVersionList = append(migrationHistoryVersionList, migrationHistory.Version)
	}
	// Sort and get the latest version
	version.Sort(migrationHistoryVersionList)
	latestMigrationHistoryVersion := migrationHistoryVersionList[len(migrationHistoryVersionList)-1]

	if !version.IsVersionGreaterThan(version.GetSchemaVersion(currentVersion), latestMigrationHistoryVersion) {
		return nil
	}

	backupDBFilePath, err := d.backup()
	if err != nil {
		return err
	}
	log.Info("Start migration", zap.String("from", latestMigrationHistoryVersion), zap.String("to", currentVersion))
	for _, minorVersion := range getMinorVersionList() {
		// Patch releases never change the schema.
		normalizedVersion := minorVersion + ".0"
		if version.IsVersionGreaterThan(normalizedVersion, latestMigrationHistoryVersion) && version.IsVersionGreaterOrEqualThan(currentVersion, normalizedVersion) {
			log.Info("Applying migration", zap.String("version", normalizedVersion))
			if err := d.applyMigrationForMinorVersion(ctx, minorVersion); err != nil {
				return errors.Wrap(err, "failed to apply minor version migration")
			}
		}
	}
	log.Info("End migration")

	// Remove the created backup db file after migrate succeed.
	if backupDBFilePath != "" {
		if err := os.Remove(backupDBFilePath); err != nil {
			log.Warn("Failed to remove backup database file", zap.String("path", backupDBFilePath), zap.Error(err))
		}
	}
	return nil
}

// Seed loads the sample catalog.
func (d *DB) Seed(ctx context.Context) error {
	filenames, err := fs.Glob(seedFS, "seed/*.sql")
	if err != nil {
		return errors.Wrap(err, "failed to read seed files")
	}

	sort.Strings(filenames)

	// Loop over all seed files and execute them in order.
	for _, filename := range filenames {
		buf, err := seedFS.ReadFile(filename)
		if err != nil {
			return errors.Wrapf(err, "failed to read seed file: %q", filename)
		}
		if err := d.execute(ctx, string(buf)); err != nil {
			return errors.Wrapf(err, "seed error in %s", filename)
		}
	}
	return nil
}

// backup copies the raw database file next to it. In-memory databases are
// not backed up.
func (d *DB) backup() (string, error) {
	if d.path == "" || d.path == ":memory:" {
		return "", nil
	}
	rawBytes, err := os.ReadFile(d.path)
	if err != nil {
		return "", errors.Wrap(err, "failed to read raw database file")
	}
	backupDBFilePath := filepath.Join(filepath.Dir(d.path), fmt.Sprintf("e-library_%s_%d_backup.db", version.GetCurrentVersion(), time.Now().Unix()))
	if err := os.WriteFile(backupDBFilePath, rawBytes, 0644); err != nil {
		return "", errors.Wrap(err, "failed to write backup database file")
	}
	log.Info("Backup database file", zap.String("path", backupDBFilePath))
	return backupDBFilePath, nil
}

func (d *DB) applyLatestSchema(ctx context.Context) error {
	latestSchemaPath := fmt.Sprintf("migration/%s", latestSchemaFileName)
	buf, err := migrationFS.ReadFile(latestSchemaPath)
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema file: %q", latestSchemaPath)
	}

	if err := d.execute(ctx, string(buf)); err != nil {
		return errors.Wrap(err, "failed to apply latest schema")
	}
	return nil
}

// migrationFiles lists the scripts of a minor version in the order they
// apply: 00001_example.sql, 00002_example.sql, ...
func migrationFiles(minorVersion string) ([]string, error) {
	filenames, err := fs.Glob(migrationFS, fmt.Sprintf("migration/%s/*.sql", minorVersion))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to find migration files for version %s", minorVersion)
	}
	sort.Strings(filenames)
	return filenames, nil
}

// migrationFileName is the name a script is recorded under in migration_file.
func migrationFileName(path string) string {
	return strings.TrimPrefix(path, "migration/")
}

// applyMigrationForMinorVersion runs the scripts of minorVersion that have
// not been recorded yet, then marks the version as reached.
func (d *DB) applyMigrationForMinorVersion(ctx context.Context, minorVersion string) error {
	schemaVersion := minorVersion + ".0"
	filenames, err := migrationFiles(minorVersion)
	if err != nil {
		return err
	}
	applied, err := d.appliedMigrationFiles(ctx, schemaVersion)
	if err != nil {
		return err
	}

	for _, filename := range filenames {
		name := migrationFileName(filename)
		if applied[name] {
			log.Debug("Skip applied migration", zap.String("file", name))
			continue
		}
		buf, err := migrationFS.ReadFile(filename)
		if err != nil {
			return errors.Wrapf(err, "failed to read migration file: %q", filename)
		}
		if err := d.applyMigrationFile(ctx, name, schemaVersion, string(buf)); err != nil {
			return errors.Wrapf(err, "failed to apply migration %s", name)
		}
	}

	if _, err := d.UpsertMigrationHistory(ctx, &store.UpsertMigrationHistory{
		Version: schemaVersion,
	}); err != nil {
		return errors.Wrapf(err, "failed to upsert migration history for version %s", schemaVersion)
	}
	return nil
}

// markMigrationsApplied records every script up to currentVersion without
// running it.
func (d *DB) markMigrationsApplied(ctx context.Context, currentVersion string) error {
	for _, minorVersion := range getMinorVersionList() {
		schemaVersion := minorVersion + ".0"
		if !version.IsVersionGreaterOrEqualThan(currentVersion, schemaVersion) {
			continue
		}
		filenames, err := migrationFiles(minorVersion)
		if err != nil {
			return err
		}
		for _, filename := range filenames {
			if err := recordMigrationFile(ctx, d.DB, migrationFileName(filename), schemaVersion); err != nil {
				return err
			}
		}
	}
	return nil
}

// execute runs a batch of SQL statements within a transaction.
func (d *DB) execute(ctx context.Context, stmt string) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "failed to execute statement")
	}

	return tx.Commit()
}

// minorDirRegexp is a regular expression for minor version directory.
var minorDirRegexp = regexp.MustCompile(`^migration/[0-9]+\.[0-9]+$`)

func getMinorVersionList() []string {
	minorVersionList := []string{}

	if err := fs.WalkDir(migrationFS, "migration", func(path string, file fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if file.IsDir() && minorDirRegexp.MatchString(path) {
			minorVersionList = append(minorVersionList, file.Name())
		}

		return nil
	}); err != nil {
		panic(err)
	}

	version.Sort(minorVersionList)

	return minorVersionList
}
