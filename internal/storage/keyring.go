package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/zalando/go-keyring"
)

// DefaultKeyringService is the keyring service name used when the URI names none
const DefaultKeyringService = "sslvpn"

// KeyringStorage implements Store on top of the OS keyring (macOS Keychain,
// Windows Credential Manager, Secret Service on Linux). Each key is stored as a
// separate account under one service.
type KeyringStorage struct {
	service string
	logger  logrus.FieldLogger
}

// NewKeyringStorage creates a keyring-backed storage for the given service name
func NewKeyringStorage(service string, token string, logger logrus.FieldLogger) *KeyringStorage {
	if service == "" {
		service = DefaultKeyringService
	}
	if token != "" {
		logger.WithField("service", service).
			Warn("Storage token provided but keyring storage does not use authentication")
	}
	return &KeyringStorage{
		service: service,
		logger:  logger,
	}
}

// Get loads the value for key from the keyring
func (k *KeyringStorage) Get(ctx context.Context, key string) (string, error) {
	value, err := keyring.Get(k.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: failed to get %q from keyring: %v", ErrStorageUnavailable, key, err)
	}
	return value, nil
}

// Set saves value for key in the keyring
func (k *KeyringStorage) Set(ctx context.Context, key, value string) error {
	if err := keyring.Set(k.service, key, value); err != nil {
		k.logger.WithFields(logrus.Fields{
			"service": k.service,
			"key":     key,
			"error":   err,
		}).Error("Keyring write failed")
		return fmt.Errorf("%w: failed to save %q to keyring: %v", ErrStorageUnavailable, key, err)
	}
	k.logger.WithFields(logrus.Fields{"service": k.service, "key": key}).Debug("Key stored in keyring")
	return nil
}

// Delete removes key from the keyring; a missing entry is not an error
func (k *KeyringStorage) Delete(ctx context.Context, key string) error {
	if err := keyring.Delete(k.service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w: failed to delete %q from keyring: %v", ErrStorageUnavailable, key, err)
	}
	return nil
}

// Close is a no-op for keyring storage
func (k *KeyringStorage) Close() error {
	return nil
}
