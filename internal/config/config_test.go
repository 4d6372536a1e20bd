package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	FileEnv, "SERVER_HOST", "SERVER_PORT", "SERVER_READ_TIMEOUT", "SERVER_ALLOWED_ORIGINS",
	"STORE_DRIVER", "SQLITE_PATH", "DATABASE_URL", "GRAPH_URI", "GMAIL_CLIENT_ID",
	"GMAIL_CLIENT_SECRET", "GMAIL_REFRESH_TOKEN", "GMAIL_TIMEOUT", "SYNC_WORKERS",
	"SYNC_MAX_RESULTS", "LOG_LEVEL", "LOG_FORMAT", "LOG_INCLUDE_CALLER", "SERVER_WRITE_TIMEOUT",
	"SERVER_IDLE_TIMEOUT", "SERVER_SHUTDOWN_TIMEOUT", "GRAPH_DATABASE", "GRAPH_USERNAME",
	"GRAPH_PASSWORD", "GRAPH_MAX_CONNECTIONS", "GMAIL_TOKEN_URL", "GMAIL_API_BASE", "GMAIL_QUERY",
}

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, 50, cfg.Sync.MaxResults)
	assert.False(t, cfg.Gmail.Configured())
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_READ_TIMEOUT", "3s")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/bnpl")
	t.Setenv("GMAIL_CLIENT_ID", "id")
	t.Setenv("GMAIL_CLIENT_SECRET", "secret")
	t.Setenv("GMAIL_REFRESH_TOKEN", "refresh")
	t.Setenv("SYNC_WORKERS", "8")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/bnpl", cfg.Store.PostgresDSN)
	assert.True(t, cfg.Gmail.Configured())
	assert.Equal(t, 8, cfg.Sync.Workers)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.AllowedOrigins())
}

func TestLoadYAMLOverlayThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bnpl.yaml")
	data := []byte(`
store:
  driver: graph
graph:
  uri: neo4j://localhost:7687
  username: neo4j
sync:
  max_results: 20
gmail:
  timeout: 5s
logging:
  format: json
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	t.Setenv(FileEnv, path)
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverGraph, cfg.Store.Driver)
	assert.Equal(t, "neo4j://localhost:7687", cfg.Graph.URI)
	assert.Equal(t, 20, cfg.Sync.MaxResults)
	assert.Equal(t, 5*time.Second, cfg.Gmail.Timeout)
	assert.Equal(t, "text", cfg.Logging.Format, "environment wins over the file")
	assert.Equal(t, defaultSyncWorkers, cfg.Sync.Workers, "unset file keys keep defaults")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"SERVER_PORT": "http"}},
		{"port range", map[string]string{"SERVER_PORT": "70000"}},
		{"bad duration", map[string]string{"SERVER_READ_TIMEOUT": "soon"}},
		{"unknown driver", map[string]string{"STORE_DRIVER": "mongo"}},
		{"postgres without dsn", map[string]string{"STORE_DRIVER": "postgres"}},
		{"graph without uri", map[string]string{"STORE_DRIVER": "graph"}},
		{"zero workers", map[string]string{"SYNC_WORKERS": "0"}},
		{"missing file", map[string]string{FileEnv: "/does/not/exist.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
