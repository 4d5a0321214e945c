// Package storage wraps the object-storage bucket used for news assets.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// Folders inside the bucket. Object keys are "{folder}/{filename}"; an
// upload with an existing key overwrites the object.
const (
	ImageFolder      = "imagenes"
	AttachmentFolder = "archivos"
)

// CloudStorageClient stores news assets in a GCS bucket and derives their
// public URLs. One client is created at startup and injected.
type CloudStorageClient struct {
	BucketName string
	Client     *storage.Client
}

// NewCloudStorageClient creates a client for the bucket named by
// STORAGE_BUCKET, or the given override when non-empty.
func NewCloudStorageClient(ctx context.Context, bucketName string) (*CloudStorageClient, error) {
	if bucketName == "" {
		bucketName = os.Getenv("STORAGE_BUCKET")
	}
	if bucketName == "" {
		return nil, errors.New("storage bucket name is empty")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud storage client: %w", err)
	}
	return &CloudStorageClient{
		BucketName: bucketName,
		Client:     client,
	}, nil
}

// UploadFile writes the data to objectName, overwriting any existing object.
// The content type is advisory metadata; empty is fine.
func (c *CloudStorageClient) UploadFile(ctx context.Context, objectName string, fileData io.Reader, contentType string) error {
	obj := c.Client.Bucket(c.BucketName).Object(objectName)
	wc := obj.NewWriter(ctx)
	if contentType != "" {
		wc.ContentType = contentType
	}
	if _, err := io.Copy(wc, fileData); err != nil {
		return fmt.Errorf("failed to write data to object: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close object writer: %w", err)
	}
	return nil
}

// PublicURL derives the publicly resolvable URL of an object. The bucket is
// expected to be public-read; no signing is involved.
func (c *CloudStorageClient) PublicURL(objectName string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.BucketName, objectName)
}

// ListObjects returns the names of every object under the given prefix.
// Used by the orphan reconciliation tool.
func (c *CloudStorageClient) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	it := c.Client.Bucket(c.BucketName).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %q: %w", prefix, err)
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}

// Close releases the underlying client. Called once at process shutdown.
func (c *CloudStorageClient) Close() error {
	return c.Client.Close()
}
