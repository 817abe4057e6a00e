package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engineering87/TemporalCollections-sub001/pkg/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.False(t, cfg.Server.Enabled)
	assert.Equal(t, 100000, cfg.Bench.Operations)
	assert.Equal(t, 4096, cfg.Bench.RingCapacity)
	assert.Equal(t, 16, cfg.Bench.Priorities)
	assert.Equal(t, 10*time.Minute, cfg.Bench.Timeout)
	assert.True(t, cfg.Hibernation.Enabled)
	assert.Equal(t, 10000, cfg.Hibernation.Threshold)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Observability.OTLPEndpoint)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	configContent := `
server:
  enabled: true
  port: 9000
  host: "127.0.0.1"

bench:
  operations: 500
  ring_capacity: 64
  containers: ["ordered", "interval"]

hibernation:
  threshold: 100

observability:
  otlp_endpoint: "localhost:4317"
  otlp_insecure: true
`

	tmpDir := t.TempDir()

	tmpFile, err := os.CreateTemp(tmpDir, "test-config-*.yaml")
	require.NoError(t, err)

	_, writeErr := tmpFile.WriteString(configContent)
	require.NoError(t, writeErr)

	tmpFile.Close()

	cfg, loadErr := config.LoadConfig(tmpFile.Name())
	require.NoError(t, loadErr)

	assert.True(t, cfg.Server.Enabled)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 500, cfg.Bench.Operations)
	assert.Equal(t, 64, cfg.Bench.RingCapacity)
	assert.Equal(t, []string{"ordered", "interval"}, cfg.Bench.Containers)
	assert.Equal(t, 100, cfg.Hibernation.Threshold)
	assert.Equal(t, "localhost:4317", cfg.Observability.OTLPEndpoint)
	assert.True(t, cfg.Observability.OTLPInsecure)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("TEMPORAL_SERVER_PORT", "9090")
	t.Setenv("TEMPORAL_BENCH_OPERATIONS", "777")
	t.Setenv("TEMPORAL_LOGGING_LEVEL", "debug")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 777, cfg.Bench.Operations)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfigValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		wantErr error
		name    string
		content string
	}{
		{
			name:    "bad port",
			content: "server:\n  port: 0\n",
			wantErr: config.ErrInvalidPort,
		},
		{
			name:    "port too large",
			content: "server:\n  port: 70000\n",
			wantErr: config.ErrInvalidPort,
		},
		{
			name:    "bad operations",
			content: "bench:\n  operations: -1\n",
			wantErr: config.ErrInvalidOperations,
		},
		{
			name:    "bad ring capacity",
			content: "bench:\n  ring_capacity: 0\n",
			wantErr: config.ErrInvalidRingCapacity,
		},
		{
			name:    "bad priorities",
			content: "bench:\n  priorities: 0\n",
			wantErr: config.ErrInvalidPriorities,
		},
		{
			name:    "bad hibernation threshold",
			content: "hibernation:\n  threshold: -5\n",
			wantErr: config.ErrInvalidThreshold,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tmpDir := t.TempDir()

			tmpFile, err := os.CreateTemp(tmpDir, "test-config-*.yaml")
			require.NoError(t, err)

			_, writeErr := tmpFile.WriteString(tc.content)
			require.NoError(t, writeErr)

			tmpFile.Close()

			_, loadErr := config.LoadConfig(tmpFile.Name())
			require.ErrorIs(t, loadErr, tc.wantErr)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig("/nonexistent/config.yaml")
	require.Error(t, err)
}
