// Package storage selects the persistence adapter configured for this deployment.
package storage

import (
	"log/slog"

	"market/config"
	"market/internal/domain/repository"
	"market/internal/errors"
	"market/internal/infra/metrics"
	"market/internal/infra/persistence/mongodb"
	"market/internal/infra/persistence/postgres"

	"go.uber.org/fx"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

// New opens the configured backend and returns it as the storage port.
func New(params Params) (repository.Store, error) {
	driver := params.Config.Storage.Driver
	params.Logger.Info("Opening storage", slog.String("driver", driver))

	switch driver {
	case config.StorageDriverMongo:
		db, err := mongodb.New(mongodb.Params{Lifecycle: params.Lifecycle, Config: params.Config, Logger: params.Logger})
		if err != nil {
			return nil, err
		}

		return mongodb.NewStore(db), nil
	case config.StorageDriverPostgres, "":
		db, err := postgres.New(postgres.Params{
			Lifecycle: params.Lifecycle,
			Config:    params.Config,
			Logger:    params.Logger,
			Metrics:   params.Metrics,
		})
		if err != nil {
			return nil, err
		}

		return postgres.NewStore(db), nil
	default:
		return nil, errors.Errorf("unsupported storage driver %q", driver)
	}
}
