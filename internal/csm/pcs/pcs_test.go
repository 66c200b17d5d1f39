package pcs

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

func TestParseOperation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Operation
	}{
		{"on", On},
		{"OFF", Off},
		{"soft-off", SoftOff},
		{"Soft_Restart", SoftRestart},
		{"hard-restart", HardRestart},
		{"init", Init},
		{"force_off", ForceOff},
	}
	for _, tc := range cases {
		op, err := ParseOperation(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, op, "input %q", tc.in)
	}

	_, err := ParseOperation("sleep")
	assert.Error(t, err)
}

func TestCreateTransition(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/power-control/v1/transitions", r.URL.Path)

		var req TransitionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, ForceOff, req.Operation)
		require.Len(t, req.Location, 2)
		assert.Equal(t, "x1000c0s0b0n0", req.Location[0].Xname)

		_ = json.NewEncoder(w).Encode(Transition{TransitionID: "t-123", Operation: req.Operation})
	}))

	id, err := client.CreateTransition(context.Background(), TransitionRequest{
		Operation: ForceOff,
		Location: []Location{
			{Xname: "x1000c0s0b0n0"},
			{Xname: "x1000c0s0b0n1"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "t-123", id)
}

func TestCreateTransition_NoTargets(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	_, err := client.CreateTransition(context.Background(), TransitionRequest{Operation: On})
	assert.Error(t, err)
}

func TestCreateTransition_MissingID(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Transition{})
	}))

	_, err := client.CreateTransition(context.Background(), TransitionRequest{
		Operation: On,
		Location:  []Location{{Xname: "x1000c0s0b0n0"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no transition id")
}

func TestTransition_PollAndSettled(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/power-control/v1/transitions/t-123", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Transition{
			TransitionID: "t-123",
			Operation:    On,
			TaskCounts:   TaskCounts{Total: 3, Failed: 1, Succeeded: 2},
			Tasks: []Task{
				{Xname: "x1000c0s0b0n0", TaskStatus: TaskSucceeded},
				{Xname: "x1000c0s0b0n1", TaskStatus: TaskSucceeded},
				{Xname: "x1000c0s0b0n2", TaskStatus: TaskFailed, Error: "BMC unreachable"},
			},
		})
	}))

	tr, err := client.Transition(context.Background(), "t-123")
	require.NoError(t, err)
	assert.True(t, tr.Settled())
	require.Len(t, tr.Tasks, 3)
	assert.Equal(t, "BMC unreachable", tr.Tasks[2].Error)
}

func TestTransition_InFlightNotSettled(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Transition{
			TransitionID: "t-9",
			TaskCounts:   TaskCounts{Total: 2, New: 1, InProgress: 1},
		})
	}))

	tr, err := client.Transition(context.Background(), "t-9")
	require.NoError(t, err)
	assert.False(t, tr.Settled())
}

func TestAbortTransition(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/power-control/v1/transitions/t-123", r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
	}))

	require.NoError(t, client.AbortTransition(context.Background(), "t-123"))
}
