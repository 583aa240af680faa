// Package credentials caches the SSL VPN session token and the username it was
// issued for in a pluggable key-value medium.
package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mazurov/sslvpn-credstore/internal/storage"
)

// Keys under which the credential record is persisted
const (
	TokenKey = "SSLVPN-Jwt-Token"
	UserKey  = "SSLVPN-Jwt-User"
)

// ErrNotFound is returned when the requested field has never been set or was removed
var ErrNotFound = errors.New("credential not found")

// Store reads and writes the token and username independently of each other.
// There is intentionally no way to remove the username: it outlives logout.
type Store struct {
	medium storage.Store
	logger logrus.FieldLogger
}

// New creates a credential store backed by medium
func New(medium storage.Store, logger logrus.FieldLogger) *Store {
	return &Store{
		medium: medium,
		logger: logger,
	}
}

// Token returns the stored token
func (s *Store) Token(ctx context.Context) (string, error) {
	return s.get(ctx, TokenKey)
}

// SetToken stores token, replacing any previous one
func (s *Store) SetToken(ctx context.Context, token string) error {
	return s.set(ctx, TokenKey, token)
}

// User returns the stored username
func (s *Store) User(ctx context.Context) (string, error) {
	return s.get(ctx, UserKey)
}

// SetUser stores username, replacing any previous one
func (s *Store) SetUser(ctx context.Context, username string) error {
	return s.set(ctx, UserKey, username)
}

// RemoveToken deletes the stored token. Removing an absent token succeeds.
func (s *Store) RemoveToken(ctx context.Context) error {
	if err := s.medium.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("failed to remove %s: %w", TokenKey, err)
	}
	s.logger.WithField("key", TokenKey).Debug("Credential removed")
	return nil
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	value, err := s.medium.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	if err := s.medium.Set(ctx, key, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	s.logger.WithField("key", key).Debug("Credential stored")
	return nil
}
