package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/shastaops/csmgo/internal/csm/ims"
	"github.com/shastaops/csmgo/internal/storage/s3"
)

// ImageListOptions configures the image list command.
type ImageListOptions struct {
	GlobalOptions
}

// ImageList prints every registered boot image.
func ImageList(ctx context.Context, out io.Writer, opts ImageListOptions) error {
	c, err := connect(opts.GlobalOptions)
	if err != nil {
		return err
	}

	images, err := c.ims().Images(ctx)
	if err != nil {
		return err
	}
	for _, img := range images {
		path := ""
		if img.Link != nil {
			path = img.Link.Path
		}
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", img.ID, img.Name, img.Arch, path)
	}
	return nil
}

// ImageFetchOptions configures the image fetch command.
type ImageFetchOptions struct {
	GlobalOptions
	Image  string // id or exact name
	Output string // destination file; "-" streams to stdout
}

// newArtifactStore is swappable in tests. Credentials for the object store
// come from the environment, matching how sites hand them out.
var newArtifactStore = func() (*s3.Client, error) {
	endpoint := os.Getenv("CSM_S3_ENDPOINT")
	if endpoint == "" {
		return nil, fmt.Errorf("CSM_S3_ENDPOINT is not set")
	}
	return s3.NewClient(endpoint,
		envOr("CSM_S3_REGION", "default"),
		os.Getenv("CSM_S3_ACCESS_KEY"),
		os.Getenv("CSM_S3_SECRET_KEY"))
}

// ImageFetch downloads an image's manifest artifact from the object store.
func ImageFetch(ctx context.Context, out io.Writer, opts ImageFetchOptions) error {
	c, err := connect(opts.GlobalOptions)
	if err != nil {
		return err
	}

	img, err := findImage(ctx, c, opts.Image)
	if err != nil {
		return err
	}
	if img.Link == nil || img.Link.Path == "" {
		return fmt.Errorf("image %s has no artifact link", img.ID)
	}

	store, err := newArtifactStore()
	if err != nil {
		return err
	}

	body, size, err := store.Fetch(ctx, img.Link.Path)
	if err != nil {
		return err
	}
	defer func() {
		_ = body.Close()
	}()

	dst := io.Writer(out)
	if opts.Output != "" && opts.Output != "-" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return err
		}
		defer func() {
			_ = f.Close()
		}()
		dst = f
	}

	written, err := io.Copy(dst, body)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", img.Link.Path, err)
	}
	if size >= 0 && written != size {
		return fmt.Errorf("fetch %s: short read, %d of %d bytes", img.Link.Path, written, size)
	}
	return nil
}

// findImage accepts either an image id or an exact name. A name matching
// several images is an error; the caller disambiguates with the id.
func findImage(ctx context.Context, c *clients, ref string) (ims.Image, error) {
	img, err := c.ims().Image(ctx, ref)
	if err == nil {
		return img, nil
	}

	matched, nameErr := c.ims().ImageByName(ctx, ref)
	if nameErr != nil {
		return ims.Image{}, nameErr
	}
	switch len(matched) {
	case 0:
		return ims.Image{}, fmt.Errorf("no image with id or name %q", ref)
	case 1:
		return matched[0], nil
	default:
		return ims.Image{}, fmt.Errorf("%d images named %q, use the id", len(matched), ref)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
