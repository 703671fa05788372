// Package seed fills the fixed category list on a fresh database.
package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/tasktracker/internal/dbx"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/categories"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/repomanager"
)

// DefaultCategories is the category list every installation starts with.
var DefaultCategories = []string{
	"Personal", "Work", "Study", "Health", "Shopping", "Finance",
	"Home", "Travel", "Social", "Hobbies", "Urgent", "Projects",
}

// Categories inserts names when the category table is empty and reports how
// many rows were added. A populated table is left alone.
func Categories(ctx context.Context, repo categories.Repository, names []string) (int, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	for i, name := range names {
		if _, err := repo.Create(ctx, name); err != nil {
			return i, fmt.Errorf("seed category %q: %w", name, err)
		}
	}
	return len(names), nil
}

// Bootstrap prepares a database for first use: with reset it first drops
// every table, then it applies the migrations and seeds DefaultCategories
// in one transaction.
func Bootstrap(ctx context.Context, db *sql.DB, rm repomanager.RepositoryManager, reset bool) (int, error) {
	if reset {
		if err := rm.Reset(ctx, db); err != nil {
			return 0, fmt.Errorf("reset: %w", err)
		}
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		return 0, fmt.Errorf("migrations: %w", err)
	}

	var added int
	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := Categories(ctx, rm.Categories(tx), DefaultCategories)
		added = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}
