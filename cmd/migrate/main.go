package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/multierr"

	"github.com/buy2brands/wholesale-api/pkg/config"
	"github.com/buy2brands/wholesale-api/pkg/env"
	pkgerrors "github.com/buy2brands/wholesale-api/pkg/errors"
	"github.com/buy2brands/wholesale-api/pkg/logger"
	"github.com/buy2brands/wholesale-api/pkg/migrate"
)

type options struct {
	cmd      string
	dir      string
	name     string
	version  string
	embedded bool
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	if _, err := env.Load(); err != nil {
		fail(logg, context.Background(), err)
	}

	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "migration command: up|down|status|version|create|validate")
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&opts.name, "name", "", "migration name (for create)")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.BoolVar(&opts.embedded, "embedded", false, "use the migrations compiled into the binary instead of -dir")
	flag.Parse()

	// create and validate only touch the filesystem
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			fail(logg, context.Background(), errors.New("missing -name for create"))
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			fail(logg, context.Background(), fmt.Errorf("create migration: %w", err))
		}
		fmt.Println("created migration:", path)
		return
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			fail(logg, context.Background(), fmt.Errorf("migration validation: %w", err))
		}
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fail(logg, context.Background(), fmt.Errorf("load config: %w", err))
	}
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": opts.cmd,
		"dir": opts.dir,
	})

	if err := run(ctx, cfg, logg, opts); err != nil {
		fail(logg, ctx, err)
	}
	logg.Info(ctx, "migrate.completed")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, opts options) (err error) {
	sqlDB, err := migrate.Open(ctx, cfg.DB.DSN)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() {
		err = multierr.Append(err, sqlDB.Close())
	}()

	source := migrate.EmbeddedFS()
	if !opts.embedded {
		if source, err = migrate.DirFS(opts.dir); err != nil {
			return fmt.Errorf("migration source: %w", err)
		}
	}
	runner, err := migrate.NewRunner(sqlDB, source, logg)
	if err != nil {
		return err
	}

	switch opts.cmd {
	case "up":
		return runner.Up(ctx)
	case "down":
		return runner.Down(ctx)
	case "status":
		pending, err := runner.Status(ctx)
		if err == nil {
			fmt.Printf("%d pending migration(s)\n", pending)
		}
		return err
	case "version":
		if opts.version == "" {
			return errors.New("missing -version for version command")
		}
		return runner.To(ctx, opts.version)
	default:
		return fmt.Errorf("unknown -cmd value %q", opts.cmd)
	}
}

func fail(logg *logger.Logger, ctx context.Context, err error) {
	logg.Error(logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "migrate.failed", err)
	os.Exit(1)
}
