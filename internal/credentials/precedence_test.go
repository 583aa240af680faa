package credentials

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mazurov/sslvpn-credstore/internal/storage"
)

func TestResolveToken(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		env      string
		stored   string
		expected string
	}{
		{
			name:     "flag takes priority over env var",
			flag:     "from-flag",
			env:      "from-env",
			stored:   "from-store",
			expected: "from-flag",
		},
		{
			name:     "env var takes priority over stored credentials",
			env:      "from-env",
			stored:   "from-store",
			expected: "from-env",
		},
		{
			name:     "falls back to stored credentials",
			stored:   "from-store",
			expected: "from-store",
		},
		{
			name:     "empty when nothing is configured",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(TokenEnvVar, tt.env)
			store, _ := newTestStore()
			ctx := context.Background()
			if tt.stored != "" {
				require.NoError(t, store.SetToken(ctx, tt.stored))
			}

			token, err := store.ResolveToken(ctx, tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, token)
		})
	}
}

func TestResolveUser(t *testing.T) {
	t.Setenv(UserEnvVar, "")
	store, _ := newTestStore()
	ctx := context.Background()

	user, err := store.ResolveUser(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "", user)

	require.NoError(t, store.SetUser(ctx, "alice"))
	user, err = store.ResolveUser(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "alice", user)

	t.Setenv(UserEnvVar, "bob")
	user, err = store.ResolveUser(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "bob", user)

	user, err = store.ResolveUser(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, "carol", user)
}

func TestResolveToken_StorageError(t *testing.T) {
	t.Setenv(TokenEnvVar, "")
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store := New(failingStorage{err: storage.ErrStorageUnavailable}, logger)

	_, err := store.ResolveToken(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)
}
