package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "snaptree.db", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 50, cfg.MaxResolveDepth)
	assert.True(t, cfg.CheckFailFast)
	assert.False(t, cfg.StrictComposites)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SNAPTREE_DB", ":memory:")
	t.Setenv("SNAPTREE_HTTP_ADDR", "127.0.0.1:9999")
	t.Setenv("SNAPTREE_MAX_RESOLVE_DEPTH", "3")
	t.Setenv("SNAPTREE_STRICT_COMPOSITES", "true")
	t.Setenv("SNAPTREE_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, "127.0.0.1:9999", cfg.HTTPAddr)
	assert.Equal(t, 3, cfg.MaxResolveDepth)
	assert.True(t, cfg.StrictComposites)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_BadLogLevel(t *testing.T) {
	t.Setenv("SNAPTREE_LOG_LEVEL", "loud")
	_, err := Load()
	assert.Error(t, err)
}
