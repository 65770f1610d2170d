package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Second, cfg.SolveTimeout)
	assert.Equal(t, "cylinder", cfg.Problem)
	assert.Empty(t, cfg.DBPath)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nautilus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
problem: linear
db_path: /tmp/nautilus.db
log_format: json
workers: 2
solve_timeout: 5s
solver:
  max_evaluations: 500
gate:
  bound_tol: 0.01
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "linear", cfg.Problem)
	assert.Equal(t, "/tmp/nautilus.db", cfg.DBPath)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 5*time.Second, cfg.SolveTimeout)
	assert.Equal(t, 500, cfg.Solver.MaxEvaluations)
	assert.Equal(t, 0.01, cfg.Gate.BoundTol)
	// untouched fields keep their defaults
	assert.Equal(t, 6, cfg.Solver.PenaltyRounds)
	assert.Equal(t, 2, cfg.Solver.Retries)
	assert.Equal(t, 1e-6, cfg.Rho)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [1"), 0o644))
	_, err = Load(path)
	require.Error(t, err)

	path = filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("utopian_epsilon: -1\n"), 0o644))
	_, err = Load(path)
	require.ErrorContains(t, err, "utopian_epsilon")
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(env(map[string]string{
		"NAUTILUS_DB":            "nav.db",
		"NAUTILUS_PROBLEM":       "plane",
		"NAUTILUS_LOG_LEVEL":     "debug",
		"NAUTILUS_WORKERS":       "3",
		"NAUTILUS_SOLVE_TIMEOUT": "250ms",
	}))
	require.NoError(t, err)
	assert.Equal(t, "nav.db", cfg.DBPath)
	assert.Equal(t, "plane", cfg.Problem)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 250*time.Millisecond, cfg.SolveTimeout)

	require.Error(t, cfg.ApplyEnv(env(map[string]string{"NAUTILUS_WORKERS": "many"})))
	require.Error(t, cfg.ApplyEnv(env(map[string]string{"NAUTILUS_SOLVE_TIMEOUT": "soon"})))
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Problem = ""
	cfg.Workers = -1
	cfg.SolveTimeout = 0
	cfg.LogLevel = "loud"
	cfg.LogFormat = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"problem", "workers", "solve_timeout", "log_level", "log_format"} {
		assert.ErrorContains(t, err, want)
	}
}

func TestValidateRejectsZeroRho(t *testing.T) {
	cfg := Default()
	cfg.Rho = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "rho must be positive")

	path := filepath.Join(t.TempDir(), "plain.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rho: 0\n"), 0o644))
	_, err = Load(path)
	require.Error(t, err)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.LogFormat = "json"
	cfg.LogLevel = "warn"

	log, err := cfg.Logger(&buf)
	require.NoError(t, err)
	log.Info("hidden")
	log.Warn("shown", "step", 2)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"step":2`)
}
