package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10000, cfg.Sim.Simulations)
	assert.Equal(t, 2.0, cfg.Sim.Threshold)
	assert.Equal(t, uint64(42), cfg.Sim.Seed)
	assert.Equal(t, 1, cfg.Sim.Workers)
	assert.Empty(t, cfg.Scenario.File)
	assert.Equal(t, "results", cfg.Report.OutputDir)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5.0, cfg.Server.RateLimitRPS)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FISCALSIM_SIM_SIMULATIONS", "2500")
	t.Setenv("FISCALSIM_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2500, cfg.Sim.Simulations)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLoggerRejectsBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "verbose-ish", Format: "json"})
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	assert.NoError(t, err)
}
