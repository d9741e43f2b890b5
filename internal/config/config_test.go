package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {

	t.Run("Empty", func(t *testing.T) {
		cfg, err := Decode(strings.NewReader(""))
		require.NoError(t, err)
		require.Equal(t, Default(), cfg)
	})

	t.Run("Partial", func(t *testing.T) {
		cfg, err := Decode(strings.NewReader(`
params: EES401EP2
loglevel: debug
bench:
  workers: 4
`))
		require.NoError(t, err)
		require.Equal(t, "EES401EP2", cfg.Params)
		require.Equal(t, "debug", cfg.LogLevel)
		require.Equal(t, 4, cfg.Bench.Workers)
		require.Equal(t, Default().Bench.Iterations, cfg.Bench.Iterations)
	})

	t.Run("UnknownKey", func(t *testing.T) {
		_, err := Decode(strings.NewReader("parameters: EES401EP1\n"))
		require.Error(t, err)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := Decode(strings.NewReader("bench:\n  workers: 0\n"))
		require.Error(t, err)
		require.Contains(t, err.Error(), "bench.workers")
	})
}

func TestEncode(t *testing.T) {

	cfg := Default()
	cfg.Params = "EES1171EP1"
	cfg.Bench.MessageLen = 0

	var buf bytes.Buffer
	require.NoError(t, cfg.Encode(&buf))

	have, err := Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, cfg, have)
}

func TestReadConfigFile(t *testing.T) {

	log := zerolog.Nop()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("security: 256\n"), 0600))

	cfg, err := ReadConfigFile(path, &log)
	require.NoError(t, err)
	require.Equal(t, 256, cfg.Security)
	require.Equal(t, path, cfg.Source())

	_, err = ReadConfigFile(filepath.Join(t.TempDir(), "missing.yml"), &log)
	require.Error(t, err)
}

func TestFindDefaultConfigPath(t *testing.T) {

	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	log := zerolog.Nop()

	require.Empty(t, FindDefaultConfigPath())

	cfg, err := ReadConfigFile("", &log)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	dir := filepath.Join(home, ".config", "ntru")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("security: 192\n"), 0600))
	require.Equal(t, filepath.Join(dir, "config.yaml"), FindDefaultConfigPath())

	// ~/.ntru comes first.
	dir = filepath.Join(home, ".ntru")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("security: 256\n"), 0600))

	path := FindDefaultConfigPath()
	require.Equal(t, filepath.Join(dir, "config.yml"), path)

	cfg, err = ReadConfigFile("", &log)
	require.NoError(t, err)
	require.Equal(t, 256, cfg.Security)
	require.Equal(t, path, cfg.Source())

	cfg, err = ReadConfigFile("~/.config/ntru/config.yaml", &log)
	require.NoError(t, err)
	require.Equal(t, 192, cfg.Security)

	require.Equal(t, []string{"~/.ntru", "~/.config/ntru"}, DefaultConfigSearchDirectories())
}
