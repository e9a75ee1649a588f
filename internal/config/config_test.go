package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("CLUBBIES_CONFIG", "")
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8000", cfg.API.BaseURL)
	require.Equal(t, 8*time.Second, cfg.API.Timeout)
	require.Equal(t, filepath.Join(home, ".local", "share", "clubbies", "clubbies.db"), cfg.Database.Path)
	require.Equal(t, filepath.Join(home, ".config", "clubbies", "session.json"), cfg.Session.TokenFile)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, 10*time.Minute, cfg.Server.TokenTTL)
	require.Equal(t, 16, cfg.Server.MinAge)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[api]
base_url = "https://api.clubbies.test"
timeout = "3s"

[server]
min_age = 18
`), 0o600))
	t.Setenv("CLUBBIES_CONFIG", path)
	t.Setenv("CLUBBIES_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://api.clubbies.test", cfg.API.BaseURL)
	require.Equal(t, 3*time.Second, cfg.API.Timeout)
	require.Equal(t, 18, cfg.Server.MinAge)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	home := isolate(t)
	t.Setenv("CLUBBIES_CONFIG", filepath.Join(home, "nope.toml"))

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	isolate(t)
	t.Setenv("CLUBBIES_API_TIMEOUT", "0s")

	_, err := Load()
	require.ErrorContains(t, err, "api.timeout")
}

func TestSaveRoundTrip(t *testing.T) {
	home := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.API.BaseURL = "http://localhost:9999"
	cfg.Log.Level = "warn"
	require.NoError(t, Save(cfg))
	require.FileExists(t, filepath.Join(home, ".config", "clubbies", "config.toml"))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9999", got.API.BaseURL)
	require.Equal(t, "warn", got.Log.Level)
	require.Equal(t, cfg.API.Timeout, got.API.Timeout)
}
