package main

import (
	"database/sql"
	"errors"
	"flag"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jwg-resto/pos-api/internal/config"
	"github.com/jwg-resto/pos-api/internal/logging"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	dir := flag.String("path", "migrations", "Directory holding the migration files")
	down := flag.Bool("down", false, "Roll back one migration instead of applying all")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("open database")
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		logger.WithError(err).Fatal("create migrate driver")
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+*dir, "postgres", driver)
	if err != nil {
		logger.WithError(err).Fatal("create migrate instance")
	}

	if *down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to apply")
		os.Exit(0)
	}
	if err != nil {
		logger.WithError(err).Fatal("migrate")
	}

	version, dirty, err := m.Version()
	if err != nil {
		logger.WithError(err).Fatal("read version")
	}
	logger.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("migrations applied")
}
