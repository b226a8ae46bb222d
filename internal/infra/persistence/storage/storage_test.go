package storage

import (
	"io"
	"log/slog"
	"testing"

	"market/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/fx/fxtest"
)

func TestNew_UnsupportedDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = "cassandra"

	_, err := New(Params{
		Lifecycle: fxtest.NewLifecycle(t),
		Config:    cfg,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	assert.ErrorContains(t, err, `unsupported storage driver "cassandra"`)
}

func TestNew_MongoRequiresConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = config.StorageDriverMongo

	_, err := New(Params{
		Lifecycle: fxtest.NewLifecycle(t),
		Config:    cfg,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	assert.ErrorContains(t, err, "mongo configuration is required")
}
