package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/tasktracker/internal/cryptox"
	"github.com/dmitrijs2005/tasktracker/internal/logging"
	"github.com/dmitrijs2005/tasktracker/internal/server/config"
	"github.com/dmitrijs2005/tasktracker/internal/server/credentials"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

// newSQLiteDB returns a migrated in-memory database and its manager.
func newSQLiteDB(t *testing.T) (*sql.DB, *repomanager.SQLRepositoryManager) {
	t.Helper()
	ctx := context.Background()

	db, err := repomanager.OpenDB(ctx, config.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m, err := repomanager.NewSQLRepositoryManager(config.DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, m.RunMigrations(ctx, db))
	return db, m
}

func newTestCredentials(t *testing.T) *credentials.Store {
	t.Helper()
	h, err := cryptox.NewHasher(cryptox.Params{Algorithm: cryptox.Argon2id, Time: 1, MemoryKiB: 64, Threads: 1})
	require.NoError(t, err)
	return credentials.NewStore(h)
}

func newAccounts(t *testing.T) *AccountService {
	t.Helper()
	db, m := newSQLiteDB(t)
	return NewAccountService(db, m, newTestCredentials(t), logging.Nop{})
}
