package storage

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// NewStorage creates a storage backend based on the URI scheme:
//   - memory://            -> MemoryStorage
//   - file://              -> FileStorage
//   - keyring://           -> KeyringStorage
//   - sqlite://            -> SQLStorage (sqlite)
//   - postgres://          -> SQLStorage (postgres)
//   - s3:// or s3+http://  -> S3Storage
func NewStorage(ctx context.Context, uri *StorageURI, token string, logger logrus.FieldLogger) (Store, error) {
	logger = logger.WithField("storage", uri.Scheme)

	switch uri.Scheme {
	case "memory":
		if token != "" {
			logger.Warn("Storage token provided but memory storage does not use authentication")
		}
		return NewMemoryStorage(), nil

	case "file":
		return NewFileStorage(uri.Path, token, logger)

	case "keyring":
		return NewKeyringStorage(uri.Host, token, logger), nil

	case "sqlite":
		return NewSQLiteStorage(uri.Path, token, logger)

	case "postgres", "postgresql":
		return NewPostgresStorage(uri.Raw, token, logger)

	case "s3", "s3+http":
		// Credentials optional for IAM role
		return NewS3Storage(ctx, uri, token, logger)

	default:
		return nil, fmt.Errorf("unsupported storage scheme: %s", uri.Scheme)
	}
}
