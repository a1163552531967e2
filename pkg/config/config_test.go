package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8082", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)
	assert.Equal(t, 1000, cfg.MaxPoolSize)
	assert.Equal(t, 30*time.Second, cfg.SolveTimeout)
	assert.Equal(t, 4, cfg.SolveWorkers)
	assert.Equal(t, 2000, cfg.SolveAttempts)
	assert.Equal(t, 40, cfg.GeneticGenerations)
	assert.Equal(t, 50, cfg.GeneticPopulation)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)

	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("ENV", "production")
	t.Setenv("SOLVE_TIMEOUT", "45s")
	t.Setenv("MAX_POOL_SIZE", "250")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 45*time.Second, cfg.SolveTimeout)
	assert.Equal(t, 250, cfg.MaxPoolSize)

	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
}
