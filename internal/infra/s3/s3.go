package s3

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const probeTimeout = 3 * time.Second

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewClient connects to the photo store and checks that the bucket is there.
// It returns nil without error when no endpoint is configured.
func NewClient(ctx context.Context, cfg Config) (*minio.Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	if bucket := strings.TrimSpace(cfg.Bucket); bucket != "" {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()
		ok, err := client.BucketExists(probeCtx, bucket)
		if err != nil {
			return nil, fmt.Errorf("probe s3 bucket %q: %w", bucket, err)
		}
		if !ok {
			return nil, fmt.Errorf("s3 bucket %q does not exist", bucket)
		}
	}
	return client, nil
}
