package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLastEmailRoundTrip(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	got, err := LoadLastEmail()
	require.NoError(t, err)
	require.Empty(t, got)

	require.NoError(t, SaveLastEmail("  user@test.com "))
	got, err = LoadLastEmail()
	require.NoError(t, err)
	require.Equal(t, "user@test.com", got)

	data, err := os.ReadFile(filepath.Join(base, "clubbies", "prefs.json"))
	require.NoError(t, err)
	require.NotContains(t, string(data), "password")
}

func TestSaveLastEmailRecoversFromCorruptFile(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	require.NoError(t, os.MkdirAll(filepath.Join(base, "clubbies"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "clubbies", "prefs.json"), []byte("{"), 0o600))

	_, err := LoadLastEmail()
	require.Error(t, err)

	require.NoError(t, SaveLastEmail("user@test.com"))
	got, err := LoadLastEmail()
	require.NoError(t, err)
	require.Equal(t, "user@test.com", got)
}
