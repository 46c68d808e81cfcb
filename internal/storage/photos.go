package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"safenetwork-api/internal/config"
)

// PhotoStore uploads and removes photo blobs with public-URL semantics.
type PhotoStore interface {
	Upload(ctx context.Context, bucket, objectPath string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, bucket, objectPath string) error
	PathFromURL(bucket, publicURL string) string
}

// MinIOPhotoStore implements PhotoStore over MinIO/S3-compatible storage.
type MinIOPhotoStore struct {
	client        *minio.Client
	publicBaseURL string
}

// NewMinIOPhotoStore connects to the blob store and ensures both photo
// buckets exist.
func NewMinIOPhotoStore(cfg config.StorageConfig) (*MinIOPhotoStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to blob storage: %w", err)
	}

	store := &MinIOPhotoStore{
		client:        client,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, bucket := range []string{cfg.CollectionBucket, cfg.InventoryBucket} {
		exists, err := client.BucketExists(ctx, bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to check bucket %q: %w", bucket, err)
		}
		if !exists {
			if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
				return nil, fmt.Errorf("failed to create bucket %q: %w", bucket, err)
			}
		}
	}

	return store, nil
}

// Upload stores the blob and returns its public URL.
func (s *MinIOPhotoStore) Upload(ctx context.Context, bucket, objectPath string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, bucket, objectPath, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"uploaded-at": time.Now().UTC().Format(time.RFC3339),
			},
		})
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, bucket, objectPath), nil
}

// Remove deletes the blob.
func (s *MinIOPhotoStore) Remove(ctx context.Context, bucket, objectPath string) error {
	err := s.client.RemoveObject(ctx, bucket, objectPath, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("remove failed: %w", err)
	}
	return nil
}

// PathFromURL recovers the object path from a public URL. Returns "" when
// the URL does not reference the given bucket.
func (s *MinIOPhotoStore) PathFromURL(bucket, publicURL string) string {
	marker := "/" + bucket + "/"
	idx := strings.Index(publicURL, marker)
	if idx == -1 {
		return ""
	}
	return publicURL[idx+len(marker):]
}

var _ PhotoStore = (*MinIOPhotoStore)(nil)
