package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateConfig(t *testing.T) {

	cfg := CreateConfig("", false, "")
	require.Equal(t, "info", cfg.MinLevel)
	require.NotNil(t, cfg.Console)
	require.Nil(t, cfg.Rolling)

	cfg = CreateConfig("debug", true, "ntru.log")
	require.Equal(t, "debug", cfg.MinLevel)
	require.True(t, cfg.Console.AsJSON)
	require.Equal(t, "ntru.log", cfg.Rolling.Filename)
}

func TestLevel(t *testing.T) {

	var out bytes.Buffer

	log := Create(&Config{
		MinLevel: "warn",
		Console:  &ConsoleConfig{AsJSON: true, Out: &out},
	})

	log.Info().Msg("hidden")
	require.Zero(t, out.Len())

	log.Warn().Msg("shown")
	require.Contains(t, out.String(), `"message":"shown"`)
	require.Contains(t, out.String(), `"level":"warn"`)
}

func TestInvalidLevel(t *testing.T) {

	var out bytes.Buffer

	log := Create(&Config{
		MinLevel: "loud",
		Console:  &ConsoleConfig{AsJSON: true, Out: &out},
	})

	require.Contains(t, out.String(), "Failed to parse log level")

	out.Reset()
	log.Debug().Msg("hidden")
	require.Zero(t, out.Len())
}

func TestRollingFile(t *testing.T) {

	filename := filepath.Join(t.TempDir(), "logs", "ntru.log")

	log := Create(&Config{
		MinLevel: "info",
		Rolling:  &RollingConfig{Filename: filename, MaxSize: 1},
	})

	log.Info().Str("params", "EES613EP1").Msg("keygen")

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	require.Contains(t, string(data), `"params":"EES613EP1"`)
}
