package cfs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shastaops/csmgo/internal/config"
	"github.com/shastaops/csmgo/internal/csm"
	"github.com/shastaops/csmgo/internal/csm/auth"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Endpoints.APIBase = server.URL
	cfg.Tuning.MaxRetryAttempts = 1
	cfg.Tuning.RetryInitialWait = time.Millisecond
	cfg.Tuning.RetryMaxWait = 5 * time.Millisecond

	api, err := csm.NewClient(cfg, auth.StaticSource("test-token"))
	require.NoError(t, err)
	return NewClient(api)
}

func TestConfigurations(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cfs/v3/configurations", r.URL.Path)
		_ = json.NewEncoder(w).Encode(configurationList{Configurations: []Configuration{
			{Name: "compute-config", Layers: []Layer{
				{CloneURL: "https://vcs.local/cray/compute.git", Commit: "abc123", Playbook: "site.yml"},
			}},
		}})
	}))

	configs, err := client.Configurations(context.Background())
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "site.yml", configs[0].Layers[0].Playbook)
}

func TestConfiguration_NotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))

	_, err := client.Configuration(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, csm.IsNotFound(err))
}

func TestCreateSession(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cfs/v3/sessions", r.URL.Path)

		var req SessionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "compute-config", req.Configuration)
		assert.Equal(t, "x1000c0s0b0n0,x1000c0s0b0n1", req.AnsibleLimit)

		_ = json.NewEncoder(w).Encode(Session{Name: req.Name})
	}))

	name, err := client.CreateSession(context.Background(), SessionRequest{
		Name:          "apply-42",
		Configuration: "compute-config",
		AnsibleLimit:  "x1000c0s0b0n0,x1000c0s0b0n1",
	})
	require.NoError(t, err)
	assert.Equal(t, "apply-42", name)
}

func TestCreateSession_RequiresConfiguration(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	_, err := client.CreateSession(context.Background(), SessionRequest{Name: "apply-42"})
	assert.Error(t, err)
}

func TestSession_State(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cfs/v3/sessions/apply-42", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"name": "apply-42",
			"status": {"session": {"status": "complete", "succeeded": "true"}}
		}`))
	}))

	s, err := client.Session(context.Background(), "apply-42")
	require.NoError(t, err)
	assert.Equal(t, SessionComplete, s.State().Status)
	assert.Equal(t, "true", s.State().Succeeded)
}

func TestComponents_StatusValues(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cfs/v3/components", r.URL.Path)
		assert.Equal(t, "x1000c0s0b0n0,x1000c0s0b0n1", r.URL.Query().Get("ids"))
		_ = json.NewEncoder(w).Encode(componentList{Components: []Component{
			{ID: "x1000c0s0b0n0", Status: StatusConfigured, DesiredConfig: "compute-config"},
			{ID: "x1000c0s0b0n1", Status: StatusFailed, ErrorCount: 3},
		}})
	}))

	comps, err := client.Components(context.Background(), []string{"x1000c0s0b0n0", "x1000c0s0b0n1"})
	require.NoError(t, err)
	require.Len(t, comps, 2)
	assert.Equal(t, StatusConfigured, comps[0].Status)
	assert.Equal(t, 3, comps[1].ErrorCount)
}
