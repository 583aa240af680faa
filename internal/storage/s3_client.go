package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// S3 timeout constants
const (
	S3RequestTimeout = 15 * time.Second
)

var (
	s3RegionDotPattern    = regexp.MustCompile(`s3\.([a-z]{2}-[a-z]+-\d+)\.amazonaws\.com`)
	s3RegionHyphenPattern = regexp.MustCompile(`s3-([a-z]{2}-[a-z]+-\d+)\.amazonaws\.com`)
)

// S3Client wraps MinIO SDK for per-object S3 operations within one bucket
type S3Client struct {
	client *minio.Client
	bucket string
	logger logrus.FieldLogger
}

// NewS3Client creates a new S3 client for the given endpoint and credentials.
func NewS3Client(endpoint, bucket, accessKey, secretKey string, useSSL bool, region string, logger logrus.FieldLogger) (*S3Client, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	}
	if accessKey == "" && secretKey == "" {
		// IAM role / instance profile
		opts.Creds = credentials.NewIAM("")
	}
	if region != "" {
		opts.Region = region
	}

	client, err := minio.New(endpoint, opts)
	if err != nil {
		return nil, CategorizeS3Error(S3OpConnect, fmt.Errorf("failed to create S3 client: %w", err))
	}

	logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"bucket":   bucket,
		"ssl":      useSSL,
		"region":   region,
	}).Debug("S3 client created")

	return &S3Client{
		client: client,
		bucket: bucket,
		logger: logger,
	}, nil
}

// ValidateBucket checks if the bucket exists and is accessible
func (c *S3Client) ValidateBucket(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, S3RequestTimeout)
	defer cancel()

	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return CategorizeS3Error(S3OpConnect, err)
	}
	if !exists {
		return CategorizeS3Error(S3OpConnect, fmt.Errorf("bucket %q does not exist", c.bucket))
	}
	return nil
}

// Download returns the object body; found is false when the object does not exist
func (c *S3Client) Download(ctx context.Context, key string) (data []byte, found bool, err error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, S3RequestTimeout)
	defer cancel()

	obj, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		if isS3NotFound(err) {
			return nil, false, nil
		}
		return nil, false, CategorizeS3Error(S3OpGet, err)
	}
	defer obj.Close()

	data, err = io.ReadAll(obj)
	if err != nil {
		if isS3NotFound(err) {
			return nil, false, nil
		}
		c.logger.WithFields(logrus.Fields{
			"bucket": c.bucket,
			"key":    key,
			"error":  err,
		}).Error("S3 download failed")
		return nil, false, CategorizeS3Error(S3OpGet, err)
	}

	c.logger.WithFields(logrus.Fields{
		"bucket":      c.bucket,
		"key":         key,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("S3 download completed")
	return data, true, nil
}

// Upload writes data as the object at key
func (c *S3Client) Upload(ctx context.Context, key string, data []byte) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, S3RequestTimeout)
	defer cancel()

	_, err := c.client.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType: "text/plain",
		},
	)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"bucket": c.bucket,
			"key":    key,
			"error":  err,
		}).Error("S3 upload failed")
		return CategorizeS3Error(S3OpPut, err)
	}

	c.logger.WithFields(logrus.Fields{
		"bucket":      c.bucket,
		"key":         key,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("S3 upload completed")
	return nil
}

// Remove deletes the object at key. S3 treats deleting a missing object as success.
func (c *S3Client) Remove(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, S3RequestTimeout)
	defer cancel()

	if err := c.client.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if isS3NotFound(err) {
			return nil
		}
		return CategorizeS3Error(S3OpDelete, err)
	}
	return nil
}

// ParseS3Token parses the storage token into access key and secret key.
// Token format: ACCESS_KEY:SECRET_KEY
// Falls back to AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY env vars if token is empty.
func ParseS3Token(token string) (accessKey, secretKey string, err error) {
	if token == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
		if (accessKey == "") != (secretKey == "") {
			return "", "", fmt.Errorf("S3 credentials incomplete: set both AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY, or use --storage-token ACCESS_KEY:SECRET_KEY")
		}
		return accessKey, secretKey, nil
	}

	// Secret key may contain colons
	accessKey, secretKey, ok := strings.Cut(token, ":")
	if !ok {
		return "", "", fmt.Errorf("invalid token format: expected ACCESS_KEY:SECRET_KEY")
	}
	if accessKey == "" {
		return "", "", fmt.Errorf("invalid token format: access key cannot be empty")
	}
	if secretKey == "" {
		return "", "", fmt.Errorf("invalid token format: secret key cannot be empty")
	}

	return accessKey, secretKey, nil
}

// ExtractRegionFromEndpoint extracts AWS region from endpoint URL.
// Supports patterns: s3.REGION.amazonaws.com and s3-REGION.amazonaws.com
func ExtractRegionFromEndpoint(endpoint string) string {
	if matches := s3RegionDotPattern.FindStringSubmatch(endpoint); len(matches) > 1 {
		return matches[1]
	}
	if matches := s3RegionHyphenPattern.FindStringSubmatch(endpoint); len(matches) > 1 {
		return matches[1]
	}
	return ""
}
