// Package s3 fetches boot-image artifacts from the cluster's object store.
//
// Image records point at their artifacts with s3:// URLs. The store speaks
// the S3 protocol with path-style addressing, which is what the on-cluster
// gateway expects.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// ErrNoSuchObject reports a missing artifact.
var ErrNoSuchObject = errors.New("no such object")

// Client reads artifacts from the object store.
type Client struct {
	s3 *s3.Client
}

// NewClient builds a store client for the given endpoint and credentials.
func NewClient(endpoint, region, accessKey, secretKey string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("load object store config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true // the on-cluster gateway does not serve virtual-hosted buckets
	})
	return &Client{s3: client}, nil
}

// ParseURL splits an s3://bucket/key artifact URL.
func ParseURL(raw string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(raw, "s3://")
	if !ok {
		return "", "", fmt.Errorf("artifact URL %q: not an s3:// URL", raw)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("artifact URL %q: want s3://bucket/key", raw)
	}
	return bucket, key, nil
}

// Fetch streams the artifact at an s3:// URL. The caller closes the reader;
// size is the object length when the store reports one, else -1.
func (c *Client) Fetch(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	bucket, key, err := ParseURL(url)
	if err != nil {
		return nil, 0, err
	}

	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, 0, fmt.Errorf("%w: %s", ErrNoSuchObject, url)
		}
		return nil, 0, fmt.Errorf("fetch %s: %w", url, err)
	}

	size := int64(-1)
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return out.Body, size, nil
}

// FetchBytes reads a small artifact, such as an image manifest, fully into
// memory.
func (c *Client) FetchBytes(ctx context.Context, url string, limit int64) ([]byte, error) {
	body, _, err := c.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(body, limit))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return data, nil
}

// Exists reports whether the artifact at an s3:// URL is present.
func (c *Client) Exists(ctx context.Context, url string) (bool, error) {
	bucket, key, err := ParseURL(url)
	if err != nil {
		return false, err
	}

	_, err = c.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("check %s: %w", url, err)
	}
	return true, nil
}

// Delete removes the artifact at an s3:// URL. Deleting an absent object
// is not an error.
func (c *Client) Delete(ctx context.Context, url string) error {
	bucket, key, err := ParseURL(url)
	if err != nil {
		return err
	}

	_, err = c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("delete %s: %w", url, err)
	}
	return nil
}

// isNotFound classifies missing-object responses. Typed SDK errors come
// first; the code fallback covers S3-compatible gateways that answer with
// bare API error codes.
func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound" || code == "404"
	}
	return false
}
