// Package repomanager opens the database for the configured driver, applies
// the embedded goose migrations and wires the SQL repositories together.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/tasktracker/internal/dbx"
	"github.com/dmitrijs2005/tasktracker/internal/filex"
	"github.com/dmitrijs2005/tasktracker/internal/logging"
	"github.com/dmitrijs2005/tasktracker/internal/server/config"
	"github.com/dmitrijs2005/tasktracker/internal/server/migrations"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/categories"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLRepositoryManager serves both supported drivers; they differ only in
// the migration set and the goose dialect.
type SQLRepositoryManager struct {
	dialect string
	dir     string
	logger  logging.Logger
}

// NewSQLRepositoryManager returns a manager for driver, which is
// config.DriverPostgres or config.DriverSQLite.
func NewSQLRepositoryManager(driver string) (*SQLRepositoryManager, error) {
	switch driver {
	case config.DriverPostgres:
		return &SQLRepositoryManager{dialect: "pgx", dir: "postgres"}, nil
	case config.DriverSQLite:
		return &SQLRepositoryManager{dialect: "sqlite3", dir: "sqlite"}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Categories(db dbx.DBTX) categories.Repository {
	return categories.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Tasks(db dbx.DBTX) tasks.Repository {
	return tasks.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewSQLRepository(db)
}

// goose seams for tests.
var (
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.UpContext(ctx, db, dir, opts...)
	}
	gooseResetContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.ResetContext(ctx, db, dir, opts...)
	}
)

// WithLogger sends goose's migration output to l. Without a logger it is
// discarded.
func (m *SQLRepositoryManager) WithLogger(l logging.Logger) *SQLRepositoryManager {
	m.logger = l.With("module", "migrations")
	return m
}

func (m *SQLRepositoryManager) setupGoose() error {
	if m.logger != nil {
		goose.SetLogger(gooseLogger{l: m.logger})
	} else {
		goose.SetLogger(goose.NopLogger())
	}
	goose.SetBaseFS(migrations.Migrations)
	return goose.SetDialect(m.dialect)
}

// RunMigrations applies all pending migrations.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	if err := m.setupGoose(); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, m.dir)
}

// Reset rolls every migration back, dropping all tables.
func (m *SQLRepositoryManager) Reset(ctx context.Context, db *sql.DB) error {
	if err := m.setupGoose(); err != nil {
		return err
	}
	return gooseResetContext(ctx, db, m.dir)
}

// OpenDB opens and pings the database. For a SQLite file the parent
// directory is created first. SQLite gets a single connection, which keeps
// an in-memory database alive for the pool's lifetime and serializes
// writers, and has foreign keys switched on.
func OpenDB(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if driver == config.DriverSQLite {
		if path, ok := filex.SQLiteFilePath(dsn); ok {
			if _, err := filex.EnsureParentDir(path); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == config.DriverSQLite {
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
