package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Validates(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Endpoints.APIBase = "https://api.example.net/apis"
	require.NoError(t, cfg.Validate())
}

func TestValidate_RequiresAPIBase(t *testing.T) {
	t.Parallel()

	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_base")
}

func TestValidate_TuningRanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative retries", func(c *Config) { c.Tuning.MaxRetryAttempts = -1 }},
		{"zero poll interval", func(c *Config) { c.Tuning.PollInterval = 0 }},
		{"jitter too large", func(c *Config) { c.Tuning.PollJitter = 1.5 }},
		{"zero operation timeout", func(c *Config) { c.Tuning.OperationTimeout = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			cfg.Endpoints.APIBase = "https://api.example.net"
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEndpoints_For(t *testing.T) {
	t.Parallel()

	e := Endpoints{
		APIBase: "https://api.example.net/apis",
		Power:   "https://power.example.net",
	}
	assert.Equal(t, "https://power.example.net", e.For("power"))
	assert.Equal(t, "https://api.example.net/apis", e.For("inventory"))
	assert.Equal(t, "https://api.example.net/apis", e.For("boot"))
}

func TestLoad_FileWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "csm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
endpoints:
  api_base: https://api.example.net/apis
  token_url: https://auth.example.net/keycloak/realms/shasta/protocol/openid-connect/token
tuning:
  poll_interval: 5s
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Tuning.PollInterval)
	// Untouched knobs keep their defaults.
	assert.Equal(t, DefaultOperationTimeout, cfg.Tuning.OperationTimeout)
	assert.Equal(t, DefaultMaxRetryAttempts, cfg.Tuning.MaxRetryAttempts)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv_Overrides(t *testing.T) {
	t.Setenv("CSM_API_BASE", "https://env.example.net")
	t.Setenv("CSM_POLL_INTERVAL", "9s")
	t.Setenv("CSM_MAX_RETRY_ATTEMPTS", "2")
	t.Setenv("CSM_RETRY_MAX_WAIT", "45s")
	t.Setenv("CSM_POLL_JITTER", "0.5")
	t.Setenv("CSM_CANCEL_GRACE", "20s")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "https://env.example.net", cfg.Endpoints.APIBase)
	assert.Equal(t, 9*time.Second, cfg.Tuning.PollInterval)
	assert.Equal(t, 2, cfg.Tuning.MaxRetryAttempts)
	assert.Equal(t, 45*time.Second, cfg.Tuning.RetryMaxWait)
	assert.Equal(t, 0.5, cfg.Tuning.PollJitter)
	assert.Equal(t, 20*time.Second, cfg.Tuning.CancelGrace)
}

func TestApplyEnv_MalformedIgnored(t *testing.T) {
	t.Setenv("CSM_POLL_INTERVAL", "soon")
	t.Setenv("CSM_POLL_JITTER", "lots")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, DefaultPollInterval, cfg.Tuning.PollInterval)
	assert.Equal(t, DefaultPollJitter, cfg.Tuning.PollJitter)
}
