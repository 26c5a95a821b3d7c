package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, Setup(LogConfig{Level: "debug", Format: "json", Output: path}))
	t.Cleanup(func() { _ = Setup(DefaultConfig()) })

	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	l := WithTenant("test", "tenant_a", "u1")
	l.Info().Msg("hello")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"component":"test"`)
	assert.Contains(t, string(raw), `"schema":"tenant_a"`)
	assert.Contains(t, string(raw), `"message":"hello"`)
}

func TestSetup_BadLevel(t *testing.T) {
	assert.Error(t, Setup(LogConfig{Level: "loud"}))
}
