package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/logger"
	"github.com/nikolayk812/storefront/migrations"
	"go.uber.org/zap"
)

func main() {
	flag.Parse()
	args := flag.Args()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config.Load: %v", err)
	}

	l, err := logger.New(logger.Config{Level: cfg.LogLevel, Env: cfg.Env})
	if err != nil {
		log.Fatalf("logger.New: %v", err)
	}
	defer func() { _ = l.Sync() }()

	if len(args) < 1 {
		l.Error("usage: migrate <up|down|version>")
		os.Exit(1)
	}

	if err := run(args[0], cfg.Postgres.URL, l); err != nil {
		l.Error("migration failed", zap.String("command", args[0]), zap.Error(err))
		os.Exit(1)
	}
}

func run(command, databaseURL string, l *zap.Logger) (retErr error) {
	m, err := migrations.New(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		retErr = errors.Join(retErr, srcErr, dbErr)
	}()

	switch command {
	case "up":
		err = m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			l.Info("no pending migrations")
			return nil
		}
		if err != nil {
			return err
		}
		l.Info("migrations applied")

	case "down":
		err = m.Steps(-1)
		if errors.Is(err, migrate.ErrNoChange) {
			l.Info("no migrations to roll back")
			return nil
		}
		if err != nil {
			return err
		}
		l.Info("migration rolled back")

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			l.Info("no migrations applied yet")
			return nil
		}
		if err != nil {
			return err
		}
		l.Info("current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))

	default:
		return errors.New("unknown command, expected up, down or version")
	}

	return nil
}
