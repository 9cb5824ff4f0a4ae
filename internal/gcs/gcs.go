// Package gcs reads statements from and uploads reports to Google Cloud Storage.
// It relies on Application Default Credentials.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

const scheme = "gs://"

var ErrInvalidURI = errors.New("invalid GCS URI")

// IsURI reports whether location points at Cloud Storage.
func IsURI(location string) bool {
	return strings.HasPrefix(location, scheme)
}

// ParseURI splits gs://bucket/path/to/object into bucket and object path.
func ParseURI(uri string) (bucket, object string, err error) {
	if !IsURI(uri) {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidURI, uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, scheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w (no object path): %s", ErrInvalidURI, uri)
	}
	return parts[0], parts[1], nil
}

// ObjectName joins a prefix and the base name of a local file.
func ObjectName(prefix, localPath string) string {
	return path.Join(prefix, path.Base(strings.ReplaceAll(localPath, "\\", "/")))
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Fetch opens the object at uri for reading. The caller must Close the reader.
func Fetch(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch: create storage client: %w", err)
	}

	rc, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("fetch: read object %s/%s: %w", bucket, object, err)
	}

	return &readCloser{Reader: rc, closers: []io.Closer{rc, client}}, nil
}

// Uploader copies finished report files into a bucket.
type Uploader struct {
	Bucket  string
	Prefix  string
	Timeout time.Duration
}

// Upload copies a local file to the bucket and returns its gs:// URI.
func (u *Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open file %q: %w", localPath, err)
	}
	defer f.Close()

	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	timeout := u.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	object := ObjectName(u.Prefix, localPath)
	w := client.Bucket(u.Bucket).Object(object).NewWriter(ctx)

	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy file to GCS writer: %w", err)
	}

	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}

	return scheme + u.Bucket + "/" + object, nil
}
