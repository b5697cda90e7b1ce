// Package storage persists analyzed flyer photos in Cloud Storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ImageStore stores and removes history images.
type ImageStore interface {
	// Upload writes a JPEG under the given key.
	Upload(ctx context.Context, key string, image []byte) error

	// Delete removes an object. Deleting an absent object is a no-op.
	Delete(ctx context.Context, key string) error

	// PublicURL returns the browsable URL for a stored object.
	PublicURL(key string) string
}

// BucketImageStore implements ImageStore on one GCS bucket.
type BucketImageStore struct {
	client    *gcs.Client
	bucket    string
	cdnDomain string
	logger    *slog.Logger
}

// NewBucketImageStore creates an image store backed by the named bucket.
// Credentials come from the environment.
func NewBucketImageStore(ctx context.Context, bucket, cdnDomain string, logger *slog.Logger, opts ...option.ClientOption) (ImageStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name cannot be empty")
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &BucketImageStore{
		client:    client,
		bucket:    bucket,
		cdnDomain: cdnDomain,
		logger:    logger,
	}, nil
}

// Upload writes a JPEG under the given key.
func (s *BucketImageStore) Upload(ctx context.Context, key string, image []byte) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "image/jpeg"
	w.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(w, bytes.NewReader(image)); err != nil {
		w.Close()
		return fmt.Errorf("upload image %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize image %s: %w", key, err)
	}

	s.logger.Debug("image uploaded", "key", key, "bytes", len(image))
	return nil
}

// Delete removes an object. An already-absent object is not an error so
// history deletion can be retried safely.
func (s *BucketImageStore) Delete(ctx context.Context, key string) error {
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("delete image %s: %w", key, err)
	}
	return nil
}

// PublicURL returns the browsable URL for a stored object.
func (s *BucketImageStore) PublicURL(key string) string {
	if s.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", s.cdnDomain, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key)
}
