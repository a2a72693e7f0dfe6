package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 300*time.Millisecond, cfg.Client.SearchDebounce)
	require.Equal(t, "http://localhost:8080/api", cfg.Client.BaseURL)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, int64(10), cfg.Server.MaxUploadMB)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("client:\n  base_url: http://tasks.internal/api\n  search_debounce: 150ms\nlogging:\n  level: debug\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	t.Setenv("TASKDESK_LOGGING_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "http://tasks.internal/api", cfg.Client.BaseURL)
	require.Equal(t, 150*time.Millisecond, cfg.Client.SearchDebounce)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Auth:   AuthConfig{JWTSecret: "s"},
		Client: ClientConfig{BaseURL: "http://x", Timeout: time.Second},
		Server: ServerConfig{MaxUploadMB: 1},
	}
	require.NoError(t, cfg.Validate())

	cfg.Client.BaseURL = " "
	require.Error(t, cfg.Validate())
}
