package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/tasktracker/internal/logging"
	"github.com/dmitrijs2005/tasktracker/internal/server/config"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewSQLRepositoryManager(t *testing.T) {
	pg, err := NewSQLRepositoryManager(config.DriverPostgres)
	require.NoError(t, err)
	assert.Equal(t, "postgres", pg.dir)
	assert.Equal(t, "pgx", pg.dialect)

	lite, err := NewSQLRepositoryManager(config.DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", lite.dir)
	assert.Equal(t, "sqlite3", lite.dialect)

	_, err = NewSQLRepositoryManager("mysql")
	require.Error(t, err)

	var _ RepositoryManager = pg
}

func TestFactories_ReturnRepos(t *testing.T) {
	db := newDB(t)
	m, err := NewSQLRepositoryManager(config.DriverPostgres)
	require.NoError(t, err)

	assert.NotNil(t, m.Users(db))
	assert.NotNil(t, m.Categories(db))
	assert.NotNil(t, m.Tasks(db))
	assert.NotNil(t, m.RefreshTokens(db))
}

func TestRunMigrations_UsesDialectDir(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	m, err := NewSQLRepositoryManager(config.DriverPostgres)
	require.NoError(t, err)
	require.NoError(t, m.RunMigrations(context.Background(), db))
	assert.Equal(t, "postgres", gotDir)
}

func TestRunMigrations_Error(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	m, err := NewSQLRepositoryManager(config.DriverSQLite)
	require.NoError(t, err)
	require.EqualError(t, m.RunMigrations(context.Background(), db), "boom")
}

func TestReset_Error(t *testing.T) {
	db := newDB(t)

	orig := gooseResetContext
	t.Cleanup(func() { gooseResetContext = orig })
	gooseResetContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	m, err := NewSQLRepositoryManager(config.DriverSQLite)
	require.NoError(t, err)
	require.EqualError(t, m.Reset(context.Background(), db), "boom")
}

func TestSQLite_MigrateResetMigrate(t *testing.T) {
	ctx := context.Background()
	db, err := OpenDB(ctx, config.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m, err := NewSQLRepositoryManager(config.DriverSQLite)
	require.NoError(t, err)

	require.NoError(t, m.RunMigrations(ctx, db))
	_, err = m.Categories(db).Create(ctx, "Work")
	require.NoError(t, err)

	require.NoError(t, m.Reset(ctx, db))
	_, err = m.Categories(db).Count(ctx)
	require.Error(t, err, "tables must be gone after reset")

	require.NoError(t, m.RunMigrations(ctx, db))
	n, err := m.Categories(db).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpenDB_SQLiteForeignKeys(t *testing.T) {
	ctx := context.Background()
	db, err := OpenDB(ctx, config.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var on int
	require.NoError(t, db.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&on))
	assert.Equal(t, 1, on)
}

func TestOpenDB_UnknownDriver(t *testing.T) {
	_, err := OpenDB(context.Background(), "nope", "whatever")
	require.Error(t, err)
}

func TestOpenDB_SQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tracker.db")

	db, err := OpenDB(context.Background(), config.DriverSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m, err := NewSQLRepositoryManager(config.DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, m.RunMigrations(context.Background(), db))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

type recordingLogger struct {
	logging.Nop
	infos *[]string
}

func (r recordingLogger) Info(_ context.Context, msg string, _ ...any) {
	*r.infos = append(*r.infos, msg)
}

func (r recordingLogger) With(...any) logging.Logger { return r }

func TestRunMigrations_LogsThroughLogger(t *testing.T) {
	db, err := OpenDB(context.Background(), config.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var infos []string
	m, err := NewSQLRepositoryManager(config.DriverSQLite)
	require.NoError(t, err)
	m.WithLogger(recordingLogger{infos: &infos})

	require.NoError(t, m.RunMigrations(context.Background(), db))

	joined := strings.Join(infos, "\n")
	assert.Contains(t, joined, "00001_init.sql")
}

func TestGooseLogger_Printf(t *testing.T) {
	var infos []string
	gooseLogger{l: recordingLogger{infos: &infos}}.Printf("OK   %s (%s)\n", "00001_init.sql", "1ms")
	assert.Equal(t, []string{"OK   00001_init.sql (1ms)"}, infos)
}
