package storage

import (
	"context"
	"fmt"
	"path"

	"github.com/sirupsen/logrus"
)

// S3Storage implements Store using S3-compatible object storage.
// Every key is a separate object under the URI prefix.
type S3Storage struct {
	client *S3Client
	prefix string
	logger logrus.FieldLogger
}

// NewS3Storage creates a new S3-backed storage.
// The uri should be a parsed S3 StorageURI (s3://endpoint/bucket/prefix or s3+http://...).
// The token should be in format ACCESS_KEY:SECRET_KEY.
func NewS3Storage(ctx context.Context, uri *StorageURI, token string, logger logrus.FieldLogger) (*S3Storage, error) {
	if !uri.IsS3Scheme() {
		return nil, fmt.Errorf("expected S3 URI, got scheme: %s", uri.Scheme)
	}

	region := uri.S3Region()
	if region == "" {
		region = ExtractRegionFromEndpoint(uri.S3Endpoint())
	}

	accessKey, secretKey, err := ParseS3Token(token)
	if err != nil {
		return nil, fmt.Errorf("failed to parse S3 credentials: %w", err)
	}

	client, err := NewS3Client(uri.S3Endpoint(), uri.S3Bucket(), accessKey, secretKey, uri.S3UseSSL(), region, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	if err := client.ValidateBucket(ctx); err != nil {
		return nil, fmt.Errorf("S3 bucket validation failed: %w", err)
	}

	return &S3Storage{
		client: client,
		prefix: uri.S3Prefix(),
		logger: logger,
	}, nil
}

// objectKey maps a store key to its object name
func (s *S3Storage) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

// Get downloads the object for key
func (s *S3Storage) Get(ctx context.Context, key string) (string, error) {
	data, found, err := s.client.Download(ctx, s.objectKey(key))
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrNotFound
	}
	return string(data), nil
}

// Set uploads value as the object for key
func (s *S3Storage) Set(ctx context.Context, key, value string) error {
	return s.client.Upload(ctx, s.objectKey(key), []byte(value))
}

// Delete removes the object for key
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	return s.client.Remove(ctx, s.objectKey(key))
}

// Close is a no-op for S3 storage
func (s *S3Storage) Close() error {
	return nil
}
