package ims

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

func TestImage(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ims/v3/images/4f2a", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Image{
			ID:   "4f2a",
			Name: "compute-2.4",
			Arch: "x86_64",
			Link: &Link{Path: "s3://boot-images/4f2a/manifest.json", Etag: "e1"},
		})
	}))

	img, err := client.Image(context.Background(), "4f2a")
	require.NoError(t, err)
	require.NotNil(t, img.Link)
	assert.Equal(t, "s3://boot-images/4f2a/manifest.json", img.Link.Path)
}

func TestImage_NotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))

	_, err := client.Image(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, csm.IsNotFound(err))
}

func TestImageByName(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ims/v3/images", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]Image{
			{ID: "1", Name: "compute-2.3"},
			{ID: "2", Name: "compute-2.4"},
			{ID: "3", Name: "compute-2.4"},
		})
	}))

	matched, err := client.ImageByName(context.Background(), "compute-2.4")
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, "2", matched[0].ID)

	none, err := client.ImageByName(context.Background(), "uan-1.0")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteImage(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/ims/v3/images/4f2a", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, client.DeleteImage(context.Background(), "4f2a"))
}
