package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/rpupo63/inkwell-blog-backend/config"
)

// ImageStore uploads featured images to object storage and hands back the
// object key persisted on the post. Serving the files is someone else's job.
type ImageStore interface {
	Upload(ctx context.Context, postID uuid.UUID, fileName string, file io.Reader, size int64) (string, error)
	Remove(ctx context.Context, objectKey string) error
}

type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore connects to MinIO using the given config and makes sure the
// bucket exists.
func NewMinIOStore(ctx context.Context, c map[string]string) (*MinIOStore, error) {
	endpoint := config.GetString(c, "MINIO_ENDPOINT", "")
	if endpoint == "" {
		return nil, fmt.Errorf("MINIO_ENDPOINT is not set")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(
			config.GetString(c, "MINIO_ACCESS_KEY", "minioadmin"),
			config.GetString(c, "MINIO_SECRET_KEY", "minioadmin"),
			"",
		),
		Secure: config.GetBool(c, "MINIO_USE_SSL", false),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to MinIO: %w", err)
	}

	bucket := config.GetString(c, "MINIO_BUCKET", "featured-images")
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket %q: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("creating bucket %q: %w", bucket, err)
		}
	}

	return &MinIOStore{client: client, bucket: bucket}, nil
}

// Upload stores a featured image under posts/<year>/<month>/<uuid><ext> and
// returns the object key.
func (s *MinIOStore) Upload(ctx context.Context, postID uuid.UUID, fileName string, file io.Reader, size int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = ".jpg"
	}

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	now := time.Now()
	objectKey := fmt.Sprintf("posts/%d/%02d/%s%s", now.Year(), int(now.Month()), uuid.New(), ext)

	_, err := s.client.PutObject(ctx, s.bucket, objectKey, file, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"original-filename": fileName,
			"post-id":           postID.String(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("uploading %q: %w", fileName, err)
	}

	return objectKey, nil
}

// Remove deletes an uploaded image, used when a featured image is replaced.
func (s *MinIOStore) Remove(ctx context.Context, objectKey string) error {
	return s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
}
