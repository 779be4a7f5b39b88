package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rpupo63/multiblog-backend/config"
)

// MinioStore uploads images to a MinIO (or any S3-compatible) bucket.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewMinioStore(ctx context.Context, settings config.StorageSettings) (*MinioStore, error) {
	if settings.Endpoint == "" || settings.Bucket == "" {
		return nil, fmt.Errorf("IMAGE_ENDPOINT and IMAGE_BUCKET are required for minio storage")
	}

	client, err := minio.New(settings.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(settings.AccessKey, settings.SecretKey, ""),
		Secure: settings.UseSSL,
		Region: settings.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, settings.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to minio server: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, settings.Bucket, minio.MakeBucketOptions{Region: settings.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", settings.Bucket, err)
		}
	}

	publicURL := settings.PublicURL
	if publicURL == "" {
		scheme := "http"
		if settings.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, settings.Endpoint, settings.Bucket)
	}

	return &MinioStore{client: client, bucket: settings.Bucket, publicURL: strings.TrimSuffix(publicURL, "/")}, nil
}

func (s *MinioStore) Save(ctx context.Context, upload Upload) (string, error) {
	key := objectKey(upload)
	size := upload.Size
	if size <= 0 {
		size = -1
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, upload.Body, size, minio.PutObjectOptions{
		ContentType: upload.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload image to minio: %w", err)
	}
	return s.publicURL + "/" + key, nil
}
