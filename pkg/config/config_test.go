package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultBackend, cfg.Server.Backend)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gatehouse.toml")
	content := `
[server]
port = 7000
backend = "nil"

[logging]
level = "debug"
format = "text"

[metrics]
enabled = true
port = 9100
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "nil", cfg.Server.Backend)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9100, cfg.Metrics.Port)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GATEHOUSE_BACKEND", "etcd:http://localhost:2379")
	t.Setenv("GATEHOUSE_LOGGING_LEVEL", "warn")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "etcd:http://localhost:2379", cfg.Server.Backend)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestGateportWins(t *testing.T) {
	t.Setenv("GATEHOUSE_PORT", "7000")
	t.Setenv("GATEPORT", "8000")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.Port)
}

func TestInvalidGateport(t *testing.T) {
	t.Setenv("GATEPORT", "not-a-port")

	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		tag     string
		want    Backend
		wantErr bool
	}{
		{tag: "nil", want: Backend{Type: BackendNil}},
		{tag: "file:/var/lib/gatehouse", want: Backend{Type: BackendFile, Path: "/var/lib/gatehouse"}},
		{tag: "etcd:http://localhost:2379", want: Backend{Type: BackendEtcd, Endpoint: "http://localhost:2379"}},
		{tag: "file:", wantErr: true},
		{tag: "etcd:", wantErr: true},
		{tag: "redis:localhost", wantErr: true},
		{tag: "", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.tag, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Server.Backend = tc.tag
			got, err := cfg.ParseBackend()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Port = cfg.Server.Port
	assert.Error(t, cfg.Validate())
}
