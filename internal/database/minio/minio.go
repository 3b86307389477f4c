package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"study-service/internal/config"
	"study-service/internal/logger"
)

// Storage wraps a MinIO client for the dataset and report buckets.
type Storage struct {
	client *minio.Client
	log    *logger.Logger
}

// Connect creates the client and makes sure the configured buckets exist.
// It returns nil when no endpoint is configured.
func Connect(ctx context.Context, cfg *config.MinIOConfig, log *logger.Logger) (*Storage, error) {
	if cfg.Endpoint == "" {
		log.Info("object storage not configured, dataset import and report export disabled")
		return nil, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize minio client: %w", err)
	}

	for _, bucket := range []string{cfg.QuestionBucket, cfg.ReportBucket} {
		exists, err := client.BucketExists(ctx, bucket)
		if err != nil {
			return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
		}
		if exists {
			continue
		}
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
		log.Info("created bucket", "bucket", bucket)
	}

	log.Info("initialized MinIO client", "endpoint", cfg.Endpoint)
	return &Storage{client: client, log: log}, nil
}

// ListObjects lists object keys under a prefix.
func (s *Storage) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	objectCh := s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var keys []string
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("list objects %s/%s: %w", bucket, prefix, object.Err)
		}
		keys = append(keys, object.Key)
	}
	return keys, nil
}

// GetObject reads a whole object into memory.
func (s *Storage) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", bucket, key, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("read object %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// PutObject uploads data under key.
func (s *Storage) PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload object %s/%s: %w", bucket, key, err)
	}
	return nil
}

// PresignedURL generates a temporary download URL.
func (s *Storage) PresignedURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	if strings.Contains(key, "..") {
		return "", errors.New("invalid object name")
	}
	u, err := s.client.PresignedGetObject(ctx, bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s/%s: %w", bucket, key, err)
	}
	return u.String(), nil
}
