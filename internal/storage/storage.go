// Package storage resolves input URIs for the pipeline. Datasets live either
// on local disk or in a Google Cloud Storage bucket; both are addressed by a
// single Open call so the pipeline steps never care where data comes from.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	gcs "cloud.google.com/go/storage"
)

const gcsPrefix = "gs://"

// Opener opens a dataset by URI for streaming reads.
type Opener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// Service opens local paths directly and gs:// URIs through a Cloud Storage
// client created per call. Application Default Credentials are assumed for
// bucket access.
type Service struct{}

// Open returns a reader for uri. Callers own the returned ReadCloser.
func (Service) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if !strings.HasPrefix(uri, gcsPrefix) {
		f, err := os.Open(uri)
		if err != nil {
			return nil, fmt.Errorf("open %q: %w", uri, err)
		}
		return f, nil
	}

	bucket, object, err := splitGCSURI(uri)
	if err != nil {
		return nil, err
	}

	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("open gs://%s/%s: %w", bucket, object, err)
	}
	return &gcsReader{ReadCloser: r, client: client}, nil
}

// gcsReader closes the client together with the object reader.
type gcsReader struct {
	io.ReadCloser
	client *gcs.Client
}

func (r *gcsReader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.client.Close(); err == nil {
		err = cerr
	}
	return err
}

func splitGCSURI(uri string) (bucket, object string, err error) {
	trimmed := strings.TrimPrefix(uri, gcsPrefix)
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI %q", uri)
	}
	return parts[0], parts[1], nil
}
