package storage

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/minio/minio-go/v7"
)

// S3 error categories
const (
	S3CategoryAuth    = "authentication"
	S3CategoryNetwork = "network"
	S3CategoryStorage = "storage"
)

// S3 operations for error context
const (
	S3OpGet     = "get"
	S3OpPut     = "put"
	S3OpDelete  = "delete"
	S3OpConnect = "connect"
)

// S3Error wraps S3-specific failures with a category.
// It matches ErrStorageUnavailable via errors.Is.
type S3Error struct {
	Category string
	Op       string
	Err      error
}

func (e *S3Error) Error() string {
	return fmt.Sprintf("S3 %s error during %s: %v", e.Category, e.Op, e.Err)
}

func (e *S3Error) Unwrap() error {
	return e.Err
}

func (e *S3Error) Is(target error) bool {
	return target == ErrStorageUnavailable
}

// NewS3AuthError creates an authentication-related S3 error
func NewS3AuthError(op string, err error) *S3Error {
	return &S3Error{
		Category: S3CategoryAuth,
		Op:       op,
		Err:      err,
	}
}

// NewS3NetworkError creates a network-related S3 error
func NewS3NetworkError(op string, err error) *S3Error {
	return &S3Error{
		Category: S3CategoryNetwork,
		Op:       op,
		Err:      err,
	}
}

// NewS3StorageError creates a storage-related S3 error
func NewS3StorageError(op string, err error) *S3Error {
	return &S3Error{
		Category: S3CategoryStorage,
		Op:       op,
		Err:      err,
	}
}

// isS3NotFound reports whether err is a missing-object response
func isS3NotFound(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

// CategorizeS3Error returns an S3Error classifying err as an authentication,
// network or storage failure. It returns nil for a nil err.
func CategorizeS3Error(op string, err error) *S3Error {
	if err == nil {
		return nil
	}

	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) && minioErr.Code != "" {
		switch minioErr.Code {
		case "AccessDenied":
			return NewS3AuthError(op, fmt.Errorf("access denied: credentials lack required permissions"))
		case "InvalidAccessKeyId":
			return NewS3AuthError(op, fmt.Errorf("invalid access key: verify credentials are correct"))
		case "SignatureDoesNotMatch":
			return NewS3AuthError(op, fmt.Errorf("signature mismatch: verify secret key is correct"))
		case "ExpiredToken":
			return NewS3AuthError(op, fmt.Errorf("token expired: refresh credentials"))
		case "NoSuchBucket":
			return NewS3StorageError(op, fmt.Errorf("bucket not found: verify bucket exists and name is correct"))
		default:
			return NewS3StorageError(op, fmt.Errorf("%s: %s", minioErr.Code, minioErr.Message))
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return NewS3NetworkError(op, fmt.Errorf("network timeout: unable to reach S3 endpoint"))
		}
		return NewS3NetworkError(op, fmt.Errorf("network error: unable to reach S3 endpoint: %v", err))
	}

	if strings.Contains(err.Error(), "AccessDenied") || strings.Contains(err.Error(), "InvalidAccessKeyId") {
		return NewS3AuthError(op, fmt.Errorf("authentication failed: %v", err))
	}

	return NewS3StorageError(op, err)
}
