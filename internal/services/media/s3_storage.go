package media

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
)

// S3Storage signs photo URLs on a MinIO/S3 endpoint.
type S3Storage struct {
	client *minio.Client
}

func NewS3Storage(client *minio.Client) *S3Storage {
	return &S3Storage{client: client}
}

func (s *S3Storage) PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("s3 client is nil")
	}
	if bucket == "" || key == "" {
		return "", ErrValidation
	}

	params := url.Values{}
	params.Set("response-content-disposition", "inline")
	presigned, err := s.client.PresignedGetObject(ctx, bucket, key, ttl, params)
	if err != nil {
		return "", fmt.Errorf("presign %s/%s: %w", bucket, key, err)
	}
	return presigned.String(), nil
}
