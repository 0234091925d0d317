package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/erp/pricing/internal/infrastructure/config"
	"github.com/erp/pricing/internal/infrastructure/logger"
	"github.com/erp/pricing/internal/infrastructure/migration"
	"github.com/erp/pricing/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// schemaCommand runs against a live database
type schemaCommand struct {
	usage string
	nargs int
	run   func(m *migration.Migrator, args []string, log *zap.Logger) error
}

var schemaCommands = map[string]schemaCommand{
	"up": {
		usage: "up",
		run: func(m *migration.Migrator, _ []string, _ *zap.Logger) error {
			return m.Up()
		},
	},
	"down": {
		usage: "down",
		run: func(m *migration.Migrator, _ []string, _ *zap.Logger) error {
			return m.Down()
		},
	},
	"step": {
		usage: "step <n>",
		nargs: 1,
		run: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return m.Steps(n)
		},
	},
	"goto": {
		usage: "goto <version>",
		nargs: 1,
		run: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
			v, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return m.GoTo(uint(v))
		},
	},
	"force": {
		usage: "force <version>",
		nargs: 1,
		run: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return m.Force(v)
		},
	},
	"version": {
		usage: "version",
		run: func(m *migration.Migrator, _ []string, log *zap.Logger) error {
			v, dirty, err := m.Version()
			if err != nil {
				return err
			}
			if v == 0 {
				log.Info("No migrations applied")
				return nil
			}
			log.Info("Current migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
			return nil
		},
	},
}

func main() {
	dir := flag.String("path", "", "Migrations directory (default: migrations embedded in the binary)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      *logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	command, rest := args[0], args[1:]
	switch command {
	case "create":
		err = createMigration(*dir, rest, log)
	case "list":
		err = listMigrations(*dir, log)
	default:
		err = runSchemaCommand(*dir, command, rest, log)
	}
	if err != nil {
		log.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
}

func createMigration(dir string, args []string, log *zap.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("migration name required: create <name> [description]")
	}
	if dir == "" {
		dir = "migrations"
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

func listMigrations(dir string, log *zap.Logger) error {
	var fsys fs.FS = migrations.FS
	if dir != "" {
		fsys = os.DirFS(dir)
	}
	list, err := migration.ListMigrations(fsys)
	if err != nil {
		return err
	}
	log.Info("Available migrations", zap.Int("count", len(list)))
	for _, m := range list {
		down := ""
		if !m.HasDown {
			down = " (no down)"
		}
		fmt.Printf("  - %s%s\n", m, down)
	}
	return nil
}

func runSchemaCommand(dir, command string, args []string, log *zap.Logger) error {
	cmd, ok := schemaCommands[command]
	if !ok {
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
	if len(args) < cmd.nargs {
		return fmt.Errorf("missing argument, usage: migrate %s", cmd.usage)
	}

	source := migration.EmbeddedSource()
	if dir != "" {
		source = migration.DirSource(dir)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, source, log)
	if err != nil {
		return err
	}
	defer m.Close()

	log.Info("Running migration command",
		zap.String("command", command),
		zap.Stringer("source", source),
		zap.String("database", cfg.Database.DBName),
	)
	return cmd.run(m, args, log)
}

func printUsage() {
	fmt.Println(`Pricing schema migrations

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (negative rolls back)
  goto <version>        Migrate to a specific version
  version               Show the applied version
  force <version>       Set the version without running it (clears dirty state)
  create <name> [desc]  Write the next numbered up/down pair
  list                  List available migrations

Flags:
  -path string          Migrations directory (default: embedded)
  -log-level string     debug, info, warn or error (default: info)

Connection settings come from the PRICING_DATABASE_* environment variables
or config.toml.`)
}
