// Package ims is the typed adapter for the image management service.
package ims

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shastaops/csmgo/internal/csm"
)

const backend = "image"

// Link points at the image manifest in object storage.
type Link struct {
	Path string `json:"path"`
	Etag string `json:"etag,omitempty"`
	Type string `json:"type,omitempty"`
}

// Image is one registered boot image.
type Image struct {
	ID      string `json:"id"`
	Created string `json:"created,omitempty"`
	Name    string `json:"name"`
	Link    *Link  `json:"link,omitempty"`
	Arch    string `json:"arch,omitempty"`
}

// Client wraps the shared API client with image-service calls.
type Client struct {
	api *csm.Client
}

// NewClient builds an image adapter over the shared client.
func NewClient(api *csm.Client) *Client {
	return &Client{api: api}
}

// Images lists every registered image.
func (c *Client) Images(ctx context.Context) ([]Image, error) {
	images, err := csm.Get[[]Image](ctx, c.api, backend, "/ims/v3/images", nil)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return images, nil
}

// Image fetches one image by id.
func (c *Client) Image(ctx context.Context, id string) (Image, error) {
	img, err := csm.Get[Image](ctx, c.api, backend, "/ims/v3/images/"+id, nil)
	if err != nil {
		return Image{}, fmt.Errorf("get image %s: %w", id, err)
	}
	return img, nil
}

// ImageByName finds images whose name matches exactly. The service has no
// server-side name filter, so this lists and selects.
func (c *Client) ImageByName(ctx context.Context, name string) ([]Image, error) {
	images, err := c.Images(ctx)
	if err != nil {
		return nil, err
	}
	var matched []Image
	for _, img := range images {
		if img.Name == name {
			matched = append(matched, img)
		}
	}
	return matched, nil
}

// DeleteImage removes an image record. The backing artifacts in object
// storage are left for the storage layer to reap.
func (c *Client) DeleteImage(ctx context.Context, id string) error {
	err := c.api.Do(ctx, csm.Request{
		Backend: backend,
		Method:  http.MethodDelete,
		Path:    "/ims/v3/images/" + id,
	}, nil)
	if err != nil {
		return fmt.Errorf("delete image %s: %w", id, err)
	}
	return nil
}
