package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
)

const (
	// TokenEnvVar is the environment variable for the session token
	TokenEnvVar = "SSLVPN_JWT_TOKEN"

	// UserEnvVar is the environment variable for the username
	UserEnvVar = "SSLVPN_JWT_USER"
)

// ResolveToken resolves the session token using precedence:
// 1. flagToken (--token flag)
// 2. Environment variable (SSLVPN_JWT_TOKEN)
// 3. Stored credentials
// Returns empty string if no token found
func (s *Store) ResolveToken(ctx context.Context, flagToken string) (string, error) {
	return resolve(flagToken, TokenEnvVar, func() (string, error) { return s.Token(ctx) })
}

// ResolveUser resolves the username with the same precedence as ResolveToken,
// using SSLVPN_JWT_USER
func (s *Store) ResolveUser(ctx context.Context, flagUser string) (string, error) {
	return resolve(flagUser, UserEnvVar, func() (string, error) { return s.User(ctx) })
}

func resolve(flagValue, envVar string, load func() (string, error)) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	if envValue := os.Getenv(envVar); envValue != "" {
		return envValue, nil
	}

	stored, err := load()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load stored credentials: %w", err)
	}

	return stored, nil
}
