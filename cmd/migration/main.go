package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/riskibarqy/overload-teams-league/internal/app"
	"github.com/riskibarqy/overload-teams-league/internal/config"
	"github.com/riskibarqy/overload-teams-league/internal/platform/logging"
)

type globals struct {
	DBURL                 string `name:"db-url" help:"Postgres connection URL." env:"DB_URL" required:""`
	Dir                   string `help:"Migrations directory. Defaults to the first of ./db/migrations and /app/db/migrations that exists." env:"MIGRATIONS_DIR"`
	DisablePreparedBinary bool   `help:"Ask lib/pq for text results." env:"DB_DISABLE_PREPARED_BINARY_RESULT" default:"true" negatable:""`
	logger                *logging.Logger
}

var cli struct {
	globals

	Up      upCmd      `cmd:"" help:"Apply every pending migration."`
	Down    downCmd    `cmd:"" help:"Roll back migrations."`
	Version versionCmd `cmd:"" help:"Print the current schema version."`
	Force   forceCmd   `cmd:"" help:"Set the schema version without running migrations."`
	Goto    gotoCmd    `cmd:"" aliases:"migrate" help:"Migrate up or down to a target version."`
}

type upCmd struct{}

func (c *upCmd) Run(g *globals) error {
	return g.withMigrator(func(m *migrate.Migrate) error {
		if err := ignoreNoChange(g.logger, m.Up()); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		g.logger.Info("migrations applied")
		return nil
	})
}

type downCmd struct {
	Steps int `arg:"" optional:"" default:"1" help:"Number of migrations to roll back."`
}

func (c *downCmd) Run(g *globals) error {
	if c.Steps <= 0 {
		return fmt.Errorf("down steps must be > 0")
	}
	return g.withMigrator(func(m *migrate.Migrate) error {
		if err := ignoreNoChange(g.logger, m.Steps(-c.Steps)); err != nil {
			return fmt.Errorf("roll back %d migration(s): %w", c.Steps, err)
		}
		g.logger.Info("migrations rolled back", "steps", c.Steps)
		return nil
	})
}

type versionCmd struct{}

func (c *versionCmd) Run(g *globals) error {
	return g.withMigrator(func(m *migrate.Migrate) error {
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("version: none")
			fmt.Println("dirty: false")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		fmt.Printf("version: %d\n", version)
		fmt.Printf("dirty: %t\n", dirty)
		return nil
	})
}

type forceCmd struct {
	Version int `arg:"" help:"Version to record."`
}

func (c *forceCmd) Run(g *globals) error {
	if c.Version < 0 {
		return fmt.Errorf("version must be >= 0")
	}
	return g.withMigrator(func(m *migrate.Migrate) error {
		if err := m.Force(c.Version); err != nil {
			return fmt.Errorf("force version %d: %w", c.Version, err)
		}
		g.logger.Info("forced schema version", "version", c.Version)
		return nil
	})
}

type gotoCmd struct {
	Target uint `arg:"" help:"Target version."`
}

func (c *gotoCmd) Run(g *globals) error {
	return g.withMigrator(func(m *migrate.Migrate) error {
		if err := ignoreNoChange(g.logger, m.Migrate(c.Target)); err != nil {
			return fmt.Errorf("migrate to %d: %w", c.Target, err)
		}
		g.logger.Info("migrated", "version", c.Target)
		return nil
	})
}

func (g *globals) withMigrator(fn func(m *migrate.Migrate) error) error {
	dir, err := resolveMigrationsDir(g.Dir)
	if err != nil {
		return err
	}

	sourceURL := "file://" + filepath.ToSlash(dir)
	m, err := migrate.New(sourceURL, app.NormalizeDBURL(strings.TrimSpace(g.DBURL), g.DisablePreparedBinary))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			g.logger.Warn("close migration source", "error", srcErr)
		}
		if dbErr != nil {
			g.logger.Warn("close migration db", "error", dbErr)
		}
	}()

	g.logger.Debug("migration source", "url", sourceURL)
	return fn(m)
}

func ignoreNoChange(logger *logging.Logger, err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return nil
	}
	return err
}

func resolveMigrationsDir(explicit string) (string, error) {
	candidates := []string{strings.TrimSpace(explicit), "./db/migrations", "/app/db/migrations"}
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}
	return "", fmt.Errorf("migration directory not found (checked MIGRATIONS_DIR, ./db/migrations, /app/db/migrations)")
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.NewConsole(logging.LevelInfo).Named("migration")
	defer func() { _ = logger.Sync() }()
	cli.logger = logger

	ctx := kong.Parse(&cli,
		kong.Name("migration"),
		kong.Description("Manage the league database schema."),
	)
	err := ctx.Run(&cli.globals)
	if err != nil {
		logger.Error("migration failed", "command", ctx.Command(), "error", err)
	}
	ctx.FatalIfErrorf(err)
}
