package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "ewm-main-service", cfg.App)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "http://localhost:9090", cfg.Stats.URL)
	assert.Equal(t, 9090, cfg.Stats.Server.Port)
	assert.Equal(t, "sqlite", cfg.Stats.Driver)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9000
storage:
  driver: memory
stats:
  url: http://stats:9090
  timeout: 750ms
log:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("EWM_DATABASE_HOST", "db.internal")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "http://stats:9090", cfg.Stats.URL)
	assert.Equal(t, 750*time.Millisecond, cfg.Stats.Timeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "db.internal", cfg.Database.Host)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_RejectsUnknownDrivers(t *testing.T) {
	cfg := Default()
	cfg.Storage.Driver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Stats.Driver = "mongo"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Log.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "h", Port: 5433, User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5433 user=u password=p dbname=d sslmode=disable", c.DSN())
}
