// Command seed prepares the tracker database: it applies the migrations and
// inserts the default categories. With -reset every table is dropped first.
// It accepts the same configuration flags as the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/tasktracker/internal/flagx"
	"github.com/dmitrijs2005/tasktracker/internal/logging"
	"github.com/dmitrijs2005/tasktracker/internal/server/config"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tasktracker/internal/server/seed"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("seed: %v", err)
	}
}

func run(args []string) error {
	var reset bool
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&reset, "reset", false, "drop all tables before migrating")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-reset", "--reset"})); err != nil {
		return fmt.Errorf("flags: %w", err)
	}

	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()
	logger := logging.NewJSON(os.Stdout, cfg.LogLevel)

	db, err := repomanager.OpenDB(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm, err := repomanager.NewSQLRepositoryManager(cfg.DatabaseDriver)
	if err != nil {
		return err
	}
	rm.WithLogger(logger)

	n, err := seed.Bootstrap(ctx, db, rm, reset)
	if err != nil {
		return err
	}

	logger.Info(ctx, "database ready", "reset", reset, "categories_added", n)
	return nil
}
