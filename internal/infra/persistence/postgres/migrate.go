package postgres

import (
	"embed"
	"log/slog"

	"market/config"
	"market/internal/errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	pgLib "github.com/slighter12/go-lib/database/postgres"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies every pending schema migration. It opens a dedicated
// connection pool because the migrate driver closes it when done.
func Migrate(cfg *config.Config, logger *slog.Logger) error {
	db, err := pgLib.New(cfg.Postgres)
	if err != nil {
		return errors.Wrap(err, "failed to open PostgreSQL for migrations")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	driver, err := pgx.WithInstance(sqlDB, &pgx.Config{})
	if err != nil {
		_ = sqlDB.Close()

		return errors.Wrap(err, "failed to create migration driver")
	}

	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		_ = driver.Close()

		return errors.Wrap(err, "failed to read embedded migrations")
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		_ = driver.Close()

		return errors.Wrap(err, "failed to initialize migration instance")
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("Failed to close migration instance",
				slog.Any("sourceError", srcErr),
				slog.Any("databaseError", dbErr),
			)
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("No new migrations to apply")

			return nil
		}

		return errors.Wrap(err, "failed to apply migrations")
	}

	version, _, _ := m.Version()
	logger.Info("Migrations applied", slog.Uint64("version", uint64(version)))

	return nil
}
