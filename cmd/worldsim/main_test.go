package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialIDs(t *testing.T) {
	next := sequentialIDs("sim")
	assert.Equal(t, "sim-000001", next())
	assert.Equal(t, "sim-000002", next())
}

func TestNewLogger(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("log-format", "json")
	viper.Set("log-level", "debug")
	_, err := newLogger()
	require.NoError(t, err)

	viper.Set("log-format", "xml")
	_, err = newLogger()
	assert.Error(t, err)

	viper.Set("log-format", "text")
	viper.Set("log-level", "loud")
	_, err = newLogger()
	assert.Error(t, err)
}

func TestEngineOptionsFromFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("generate_interval: 1m\nadmission_caps:\n  piracy: 2\n"), 0o600))
	viper.Set("config", path)
	opts, err := engineOptions()
	require.NoError(t, err)
	assert.NotEmpty(t, opts)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("admission_caps:\n  meteor: 2\n"), 0o600))
	viper.Set("config", bad)
	_, err = engineOptions()
	assert.Error(t, err)
}

func TestSimulate(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("log-level", "error")
	viper.Set("json", true)

	err := simulate(context.Background(), simulateOptions{
		ticks:        200,
		seed:         3,
		step:         10 * time.Minute,
		cleanupEvery: 10,
		boost:        50,
		start:        "2026-01-01T00:00:00Z",
	})
	require.NoError(t, err)

	err = simulate(context.Background(), simulateOptions{ticks: 0, step: 1, cleanupEvery: 1})
	assert.Error(t, err)
}
