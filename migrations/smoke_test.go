package migrations_test

import (
	"context"
	"database/sql"
	"io/fs"
	"sort"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-activities/activity"
	"github.com/goliatone/go-activities/migrations"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestMigrationsApplyToSQLite(t *testing.T) {
	t.Parallel()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})

	ctx := context.Background()
	filesystems := migrations.Filesystems()
	require.NotEmpty(t, filesystems)
	for _, fsys := range filesystems {
		require.NoError(t, applyFilesystem(ctx, db, fsys, "sqlite/*.up.sql"))
	}

	require.NoError(t, migrations.ValidateSchema(ctx, db, "sqlite"))
}

func TestRegisterKeepsNamedSources(t *testing.T) {
	sources := migrations.Sources()
	require.NotEmpty(t, sources)
	require.Equal(t, migrations.CoreSource, sources[0].Name)

	host := fstest.MapFS{}
	migrations.Register("host-posts", host)
	migrations.Register("host-posts", fstest.MapFS{})
	migrations.Register(" ", host)
	migrations.Register("nil", nil)

	names := make([]string, 0)
	for _, src := range migrations.Sources() {
		names = append(names, src.Name)
	}
	require.Equal(t, 1, strings.Count(strings.Join(names, ","), "host-posts"))
	require.NotContains(t, names, "nil")
	require.Len(t, migrations.Filesystems(), len(names))
}

func TestPostgresMigrationsMirrorSQLite(t *testing.T) {
	for _, fsys := range migrations.Filesystems() {
		pg, err := fs.Glob(fsys, "*.up.sql")
		require.NoError(t, err)
		lite, err := fs.Glob(fsys, "sqlite/*.up.sql")
		require.NoError(t, err)
		require.Len(t, lite, len(pg))
	}
}

func TestValidateSchemaReportsMissingTables(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})
	ctx := context.Background()
	_, err = db.ExecContext(ctx, `CREATE TABLE posts (id TEXT PRIMARY KEY)`)
	require.NoError(t, err)

	err = migrations.ValidateSchema(ctx, db, "sqlite",
		migrations.WithSchemaChecks([]migrations.SchemaCheck{{Table: "activities", Columns: []string{"id"}}}),
		migrations.WithAdditionalChecks(migrations.ShareCounterCheck("posts", "")),
	)
	var schemaErr *migrations.SchemaValidationError
	require.ErrorAs(t, err, &schemaErr)
	require.Equal(t, []string{"activities"}, schemaErr.MissingTables)
	require.Equal(t, map[string][]string{"posts": {"share_count"}}, schemaErr.MissingColumns)
	require.Contains(t, err.Error(), "posts(share_count)")

	require.Error(t, migrations.ValidateSchema(ctx, db, "mysql"))
}

func TestEnsureSchemaSatisfiesChecks(t *testing.T) {
	sqldb, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})
	ctx := context.Background()
	require.NoError(t, activity.EnsureSchema(ctx, db))
	require.NoError(t, migrations.ValidateSchema(ctx, sqldb, "sqlite3"))
}

func applyFilesystem(ctx context.Context, db *sql.DB, filesystem fs.FS, pattern string) error {
	entries, err := fs.Glob(filesystem, pattern)
	if err != nil {
		return err
	}
	sort.Strings(entries)
	for _, entry := range entries {
		sqlBytes, err := fs.ReadFile(filesystem, entry)
		if err != nil {
			return err
		}
		for _, stmt := range splitStatements(string(sqlBytes)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
	}
	return nil
}

func splitStatements(sql string) []string {
	parts := strings.Split(sql, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
