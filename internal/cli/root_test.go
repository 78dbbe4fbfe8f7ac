package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/config"
)

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"serve", "stats", "migrate", "config"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	flag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "c", flag.Shorthand)
	assert.Equal(t, "", flag.DefValue)

	migrate, _, err := cmd.Find([]string{"migrate"})
	require.NoError(t, err)
	assert.NotNil(t, migrate.Flags().Lookup("stats"))
}

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ewm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  driver: memory
server:
  port: 8181
database:
  password: hunter2
`), 0o600))

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config", "--config", path})
	require.NoError(t, cmd.Execute())

	assert.NotContains(t, out.String(), "hunter2")

	var got config.Config
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "memory", got.Storage.Driver)
	assert.Equal(t, 8181, got.Server.Port)
	assert.Equal(t, "ewm-main-service", got.App)
}

func TestConfigCommand_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ewm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: cassandra\n"), 0o600))

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "--config", path})
	assert.Error(t, cmd.Execute())
}
