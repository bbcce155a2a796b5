// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
app:
  name: teamfit-workers
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: teamfit
    user: teamfit
    password: ${TEAMFIT_TEST_DB_PASSWORD}
  elasticsearch:
    addresses:
      - http://localhost:9200
  redis:
    address: localhost:6379
cache:
  slots_ttl: 30
workers:
  calculate-fit-score:
    enabled: true
    max_jobs_active: 8
  send-notification:
    enabled: false
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("TEAMFIT_TEST_DB_PASSWORD", "s3cret")

	cfg, err := LoadFromFile(writeConfig(t, testYAML))
	require.NoError(t, err)

	assert.Equal(t, "teamfit-workers", cfg.App.Name)
	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "http://localhost:9200", cfg.Database.Elasticsearch.GetURL())

	assert.Equal(t, 30*time.Second, cfg.Cache.SlotsTTLDuration())
	assert.Equal(t, 300*time.Second, cfg.Cache.ProfileTTLDuration())
	assert.Equal(t, "position_slots", cfg.Search.SlotIndex)
	assert.Equal(t, ":8080", cfg.Server.Address)

	fit := GetWorkerConfig(cfg, "calculate-fit-score")
	assert.True(t, fit.Enabled)
	assert.Equal(t, 8, fit.MaxJobsActive)
	assert.Equal(t, 30000, fit.Timeout)
	assert.Equal(t, 3, fit.MaxRetries)
}

func TestLoadFromFile_MissingRequired(t *testing.T) {
	_, err := LoadFromFile(writeConfig(t, "app:\n  name: x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "camunda.broker_address")
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWorkerHelpers(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"send-notification": {Enabled: false},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "send-notification"))
	assert.True(t, IsWorkerEnabled(cfg, "classify-level"))

	def := GetWorkerConfig(cfg, "classify-level")
	assert.True(t, def.Enabled)
	assert.Equal(t, 5, def.MaxJobsActive)
}

func TestGetDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=d sslmode=disable", p.GetDSN())
	assert.Equal(t, 250*time.Millisecond, GetDuration(250))
}
