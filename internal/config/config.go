// Package config defines the client configuration surface: backend
// endpoints, transport settings, and retry/poll tuning.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Defaults for tuning knobs. Endpoint URLs have no defaults; a site always
// supplies them.
const (
	DefaultMaxRetryAttempts = 5
	DefaultRetryInitialWait = 1 * time.Second
	DefaultRetryMaxWait     = 30 * time.Second
	DefaultRequestTimeout   = 30 * time.Second
	DefaultPollInterval     = 3 * time.Second
	DefaultPollJitter       = 0.2
	DefaultOperationTimeout = 15 * time.Minute
	DefaultCancelGrace      = 10 * time.Second
)

// Endpoints holds the per-backend base URLs. APIBase covers every backend
// that does not set an explicit override, matching sites that expose all
// services behind one gateway.
type Endpoints struct {
	APIBase   string `yaml:"api_base"`
	TokenURL  string `yaml:"token_url"`
	Inventory string `yaml:"inventory,omitempty"`
	Power     string `yaml:"power,omitempty"`
	Boot      string `yaml:"boot,omitempty"`
	Config    string `yaml:"config,omitempty"`
	Image     string `yaml:"image,omitempty"`
}

// For returns the base URL for one backend, falling back to APIBase.
func (e Endpoints) For(backend string) string {
	var override string
	switch backend {
	case "inventory":
		override = e.Inventory
	case "power":
		override = e.Power
	case "boot":
		override = e.Boot
	case "config":
		override = e.Config
	case "image":
		override = e.Image
	}
	if override != "" {
		return override
	}
	return e.APIBase
}

// Tuning holds retry, poll, and deadline knobs shared by the client layer
// and the orchestrator.
type Tuning struct {
	MaxRetryAttempts int           `yaml:"max_retry_attempts"`
	RetryInitialWait time.Duration `yaml:"retry_initial_wait"`
	RetryMaxWait     time.Duration `yaml:"retry_max_wait"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	PollJitter       float64       `yaml:"poll_jitter"`
	OperationTimeout time.Duration `yaml:"operation_timeout"`
	CancelGrace      time.Duration `yaml:"cancel_grace"`
}

// Config is the full client configuration.
type Config struct {
	Endpoints Endpoints `yaml:"endpoints"`

	// ProxyURL routes all backend traffic through a socks5:// or http://
	// proxy when set. Opaque to callers of the client layer.
	ProxyURL string `yaml:"proxy_url,omitempty"`

	// RootCAFile points at a PEM bundle for the site's private CA.
	RootCAFile string `yaml:"root_ca_file,omitempty"`

	// Kubeconfig points at the kubeconfig used by the console bridge.
	Kubeconfig string `yaml:"kubeconfig,omitempty"`

	Tuning Tuning `yaml:"tuning"`
}

// Default returns a Config with all tuning knobs at their defaults and
// empty endpoints.
func Default() Config {
	return Config{
		Tuning: Tuning{
			MaxRetryAttempts: DefaultMaxRetryAttempts,
			RetryInitialWait: DefaultRetryInitialWait,
			RetryMaxWait:     DefaultRetryMaxWait,
			RequestTimeout:   DefaultRequestTimeout,
			PollInterval:     DefaultPollInterval,
			PollJitter:       DefaultPollJitter,
			OperationTimeout: DefaultOperationTimeout,
			CancelGrace:      DefaultCancelGrace,
		},
	}
}

// Validate checks endpoint URLs and tuning ranges.
func (c *Config) Validate() error {
	if c.Endpoints.APIBase == "" {
		return fmt.Errorf("endpoints.api_base is required")
	}
	for name, raw := range map[string]string{
		"endpoints.api_base":  c.Endpoints.APIBase,
		"endpoints.token_url": c.Endpoints.TokenURL,
		"proxy_url":           c.ProxyURL,
	} {
		if raw == "" {
			continue
		}
		if _, err := url.Parse(raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if c.Tuning.MaxRetryAttempts < 0 {
		return fmt.Errorf("tuning.max_retry_attempts must not be negative")
	}
	if c.Tuning.PollInterval <= 0 {
		return fmt.Errorf("tuning.poll_interval must be positive")
	}
	if c.Tuning.PollJitter < 0 || c.Tuning.PollJitter >= 1 {
		return fmt.Errorf("tuning.poll_jitter must be in [0,1)")
	}
	if c.Tuning.OperationTimeout <= 0 {
		return fmt.Errorf("tuning.operation_timeout must be positive")
	}
	return nil
}

// ApplyEnv overlays environment variables onto the config. Unset or
// malformed variables leave the current value in place.
//
// Recognized variables:
//   - CSM_API_BASE, CSM_TOKEN_URL, CSM_PROXY, CSM_ROOT_CA_FILE, CSM_KUBECONFIG
//   - CSM_MAX_RETRY_ATTEMPTS, CSM_RETRY_INITIAL_WAIT, CSM_RETRY_MAX_WAIT
//   - CSM_REQUEST_TIMEOUT, CSM_POLL_INTERVAL, CSM_POLL_JITTER
//   - CSM_OPERATION_TIMEOUT, CSM_CANCEL_GRACE
func (c *Config) ApplyEnv() {
	setString(&c.Endpoints.APIBase, "CSM_API_BASE")
	setString(&c.Endpoints.TokenURL, "CSM_TOKEN_URL")
	setString(&c.ProxyURL, "CSM_PROXY")
	setString(&c.RootCAFile, "CSM_ROOT_CA_FILE")
	setString(&c.Kubeconfig, "CSM_KUBECONFIG")
	setInt(&c.Tuning.MaxRetryAttempts, "CSM_MAX_RETRY_ATTEMPTS")
	setDuration(&c.Tuning.RetryInitialWait, "CSM_RETRY_INITIAL_WAIT")
	setDuration(&c.Tuning.RetryMaxWait, "CSM_RETRY_MAX_WAIT")
	setDuration(&c.Tuning.RequestTimeout, "CSM_REQUEST_TIMEOUT")
	setDuration(&c.Tuning.PollInterval, "CSM_POLL_INTERVAL")
	setFloat(&c.Tuning.PollJitter, "CSM_POLL_JITTER")
	setDuration(&c.Tuning.OperationTimeout, "CSM_OPERATION_TIMEOUT")
	setDuration(&c.Tuning.CancelGrace, "CSM_CANCEL_GRACE")
}

func setString(dst *string, envVar string) {
	if v := os.Getenv(envVar); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, envVar string) {
	v := os.Getenv(envVar)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}

func setFloat(dst *float64, envVar string) {
	v := os.Getenv(envVar)
	if v == "" {
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = f
	}
}

func setInt(dst *int, envVar string) {
	v := os.Getenv(envVar)
	if v == "" {
		return
	}
	if i, err := strconv.Atoi(v); err == nil {
		*dst = i
	}
}
