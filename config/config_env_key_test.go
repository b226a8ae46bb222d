package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "user",
			},
		},
		"mongo": map[string]any{
			"connectTimeout": "10s",
		},
		"secretKey": map[string]any{
			"access": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "MONGO_CONNECTTIMEOUT", want: "mongo.connectTimeout"},
		{envKey: "SECRETKEY_ACCESS", want: "secretKey.access"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

const testYAML = `
env:
  serviceName: market
storage:
  driver: mongo
mongo:
  uri: mongodb://localhost:27017
  database: market
  connectTimeout: 5s
secretKey:
  access: from-file
scheduler:
  jobs:
    processPendingOrders:
      schedule: "*/5 * * * *"
      backoff: 60s
`

func TestLoadWithEnv_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(testYAML), 0o600))
	t.Chdir(dir)
	t.Setenv("SECRETKEY_ACCESS", "from-env")
	t.Setenv("MONGO_CONNECTTIMEOUT", "2s")

	cfg, err := LoadWithEnv[Config]("config")
	require.NoError(t, err)

	assert.Equal(t, "market", cfg.Env.ServiceName)
	assert.Equal(t, "from-env", cfg.SecretKey.Access)
	require.NotNil(t, cfg.Mongo)
	assert.Equal(t, 2*time.Second, cfg.Mongo.ConnectTimeout)
	require.NotNil(t, cfg.Scheduler)
	assert.Equal(t, time.Minute, cfg.Scheduler.Jobs.ProcessPendingOrders.Backoff)
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadWithEnv[Config]("missing")
	assert.Error(t, err)
}

func TestConfig_DefaultsAndValidate(t *testing.T) {
	cfg := &Config{}
	cfg.Storage.Driver = StorageDriverMongo
	cfg.Mongo = &MongoConfig{URI: "mongodb://localhost", Database: "market"}
	cfg.SecretKey.Access = "secret"
	cfg.Scheduler = &SchedulerConfig{}

	cfg.applyDefaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 20, cfg.Pagination.DefaultLimit)
	assert.Equal(t, 100, cfg.Pagination.MaxLimit)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, uint64(3), cfg.Scheduler.MaxRetries)
	assert.Equal(t, int64(10485760), cfg.Upload.MaxFileSize)
	assert.False(t, cfg.MailEnabled())

	cfg.Storage.Driver = "cassandra"
	assert.Error(t, cfg.Validate())

	cfg.Storage.Driver = StorageDriverPostgres
	assert.Error(t, cfg.Validate(), "postgres section is required")
}
