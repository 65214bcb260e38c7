package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/shopkeeper/backend/internal/infrastructure/config"
	"github.com/shopkeeper/backend/internal/infrastructure/logger"
	"github.com/shopkeeper/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
)

const usage = `Shopkeeper schema migrations

Usage:
  migrate [-path dir] [-log-level level] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (negative rolls back)
  version               Show current migration version
  force <version>       Mark a version as applied after fixing a dirty schema
  create <name> [desc]  Create the next numbered migration pair
  list                  List available migrations

Database settings come from config.yaml or SHOP_DATABASE_* variables.
Only the postgres driver is versioned; sqlite is migrated on server start.`

// fileCommand works on the migrations directory only
type fileCommand func(dir string, args []string, log *zap.Logger) error

// dbCommand needs a live postgres connection
type dbCommand func(m *migration.Migrator, args []string, log *zap.Logger) error

var fileCommands = map[string]fileCommand{
	"create": createMigration,
	"list":   listMigrations,
}

var dbCommands = map[string]dbCommand{
	"up": func(m *migration.Migrator, _ []string, _ *zap.Logger) error {
		_, err := m.Up()
		return err
	},
	"down": func(m *migration.Migrator, _ []string, _ *zap.Logger) error {
		return m.Down()
	},
	"step": func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		n, err := intArg(args, "step count")
		if err != nil {
			return err
		}
		return m.Steps(n)
	},
	"force": func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		v, err := intArg(args, "version")
		if err != nil {
			return err
		}
		return m.Force(v)
	},
	"version": func(m *migration.Migrator, _ []string, log *zap.Logger) error {
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("Current migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		return nil
	},
}

var errUsage = errors.New("usage")

func main() {
	dir := flag.String("path", "migrations", "migrations directory")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	log, err := logger.New(&logger.Config{Level: *level, Format: "console", Output: "stdout"}, "shopkeeper-migrate", "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	err = run(*dir, flag.Args(), log)
	logger.Sync(log)
	switch {
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	case err != nil:
		log.Error("Migration command failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(dir string, args []string, log *zap.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}
	name, rest := args[0], args[1:]

	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", dir, err)
	}
	if cmd, ok := fileCommands[name]; ok {
		return cmd(abs, rest, log)
	}
	cmd, ok := dbCommands[name]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("driver %q has no versioned migrations", cfg.Database.Driver)
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, abs, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return cmd(m, rest, log)
}

func createMigration(dir string, args []string, log *zap.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: create needs a name", errUsage)
	}
	var description string
	if len(args) > 1 {
		description = args[1]
	}
	mf, err := migration.CreateMigration(dir, args[0], description)
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.Uint("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func listMigrations(dir string, _ []string, log *zap.Logger) error {
	files, err := migration.ListMigrations(dir)
	if err != nil {
		return err
	}
	for _, mf := range files {
		fmt.Println(mf.BaseName())
	}
	log.Info("Available migrations", zap.Int("count", len(files)))
	return nil
}

func intArg(args []string, what string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: %s required", errUsage, what)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", errUsage, what, args[0])
	}
	return n, nil
}
