package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBuiltinDefaultsWhenNoFilesExist(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, builtinDefaults, cfg.Defaults)
	assert.Empty(t, cfg.Queries)
}

func TestLoadExplicitPathOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "defaults:\n  bufferSize: 500\n  context: 3\nqueries:\n  billing: billid=42\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Defaults.BufferSize)
	assert.Equal(t, 3, cfg.Defaults.Context)
	assert.Equal(t, "billid=42", cfg.Queries["billing"])
}

func TestLoadExplicitPathMissingIsAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, ErrConfigMissing)
}

func TestLoadEnvVarColonSeparatedLaterWins(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.yaml")
	second := filepath.Join(dir, "b.yaml")
	require.NoError(t, os.WriteFile(first, []byte("queries:\n  one: billid=1\n"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("queries:\n  one: billid=2\n"), 0o644))

	t.Setenv(EnvConfigPath, first+string(os.PathListSeparator)+second)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "billid=2", cfg.Queries["one"])
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("defaults: [this is not a map"), 0o644))

	_, err := Load(path)
	require.ErrorIs(t, err, ErrConfigParse)
}
