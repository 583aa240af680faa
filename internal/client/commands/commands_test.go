package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mazurov/sslvpn-credstore/internal/client/errors"
)

type cliResult struct {
	stdout string
	stderr string
	code   int
}

// runCLI executes one command against the file store at storePath
func runCLI(t *testing.T, storePath, stdin string, args ...string) cliResult {
	t.Helper()

	cmd := NewRootCmd()
	cmd.SetArgs(append([]string{"--storage", "file://" + storePath}, args...))
	cmd.SetIn(strings.NewReader(stdin))

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	code := errors.Report(&stderr, cmd.Execute())
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func newStorePath(t *testing.T) string {
	t.Helper()
	for _, name := range []string{"SSLVPN_JWT_TOKEN", "SSLVPN_JWT_USER", "SSLVPN_STORAGE_URI", "SSLVPN_STORAGE_TOKEN", "SSLVPN_CONFIG_FILE"} {
		t.Setenv(name, "")
	}
	return filepath.Join(t.TempDir(), "credentials.yaml")
}

func testJWT(t *testing.T, user string, expires time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"admin_user": user,
		"exp":        expires.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestCLI_LoginLogoutScenario(t *testing.T) {
	store := newStorePath(t)

	res := runCLI(t, store, "", "login", "alice", "--token", "abc.def.ghi")
	require.Equal(t, errors.ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "✓ Logged in as alice\n", res.stdout)

	res = runCLI(t, store, "", "token")
	require.Equal(t, errors.ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "abc.def.ghi\n", res.stdout)

	res = runCLI(t, store, "", "user")
	require.Equal(t, errors.ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "alice\n", res.stdout)

	res = runCLI(t, store, "", "logout")
	require.Equal(t, errors.ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "✓ Logged out successfully\n", res.stdout)

	res = runCLI(t, store, "", "token")
	assert.Equal(t, errors.ExitNotFound, res.code)
	assert.Contains(t, res.stderr, "no session token stored")

	res = runCLI(t, store, "", "user")
	require.Equal(t, errors.ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "alice\n", res.stdout)
}

func TestCLI_LoginPromptsForMissingValues(t *testing.T) {
	store := newStorePath(t)

	res := runCLI(t, store, "alice\nabc.def.ghi\n", "login")
	require.Equal(t, errors.ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stderr, "Username: ")
	assert.Contains(t, res.stderr, "Token: ")

	res = runCLI(t, store, "", "token")
	require.Equal(t, errors.ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "abc.def.ghi\n", res.stdout)
}

func TestCLI_LoginRejectsInvalidInput(t *testing.T) {
	store := newStorePath(t)

	res := runCLI(t, store, "\n", "login", "alice")
	assert.Equal(t, errors.ExitInvalidArguments, res.code)
	assert.Contains(t, res.stderr, "token cannot be empty")

	res = runCLI(t, store, "", "login", " alice", "--token", "t")
	assert.Equal(t, errors.ExitInvalidArguments, res.code)
	assert.Contains(t, res.stderr, "whitespace")
}

func TestCLI_LoginAsDifferentUserNeedsConfirmation(t *testing.T) {
	store := newStorePath(t)

	res := runCLI(t, store, "", "login", "alice", "--token", "t1")
	require.Equal(t, errors.ExitSuccess, res.code, res.stderr)

	res = runCLI(t, store, "n\n", "login", "bob", "--token", "t2")
	assert.Equal(t, errors.ExitGeneralError, res.code)
	assert.Contains(t, res.stderr, "login cancelled")

	res = runCLI(t, store, "", "token")
	assert.Equal(t, "t1\n", res.stdout)

	res = runCLI(t, store, "y\n", "login", "bob", "--token", "t2")
	require.Equal(t, errors.ExitSuccess, res.code, res.stderr)

	res = runCLI(t, store, "", "login", "carol", "--token", "t3", "--yes")
	require.Equal(t, errors.ExitSuccess, res.code, res.stderr)

	res = runCLI(t, store, "", "user")
	assert.Equal(t, "carol\n", res.stdout)
}

func TestCLI_LogoutIsIdempotent(t *testing.T) {
	store := newStorePath(t)

	for i := 0; i < 2; i++ {
		res := runCLI(t, store, "", "logout")
		require.Equal(t, errors.ExitSuccess, res.code, res.stderr)
	}
}

func TestCLI_Whoami(t *testing.T) {
	store := newStorePath(t)

	res := runCLI(t, store, "", "whoami")
	assert.Equal(t, errors.ExitAuthError, res.code)
	assert.Contains(t, res.stdout, "No session token stored")
	assert.Empty(t, res.stderr)

	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	res = runCLI(t, store, "", "login", "alice", "--token", testJWT(t, "alice", expires))
	require.Equal(t, errors.ExitSuccess, res.code, res.stderr)

	res = runCLI(t, store, "", "whoami")
	require.Equal(t, errors.ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Session token stored for alice")
	assert.Contains(t, res.stdout, "2030-01-01T00:00:00Z")

	res = runCLI(t, store, "", "whoami", "--json")
	require.Equal(t, errors.ExitSuccess, res.code, res.stderr)
	var envelope struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "alice", envelope.Data["user"])
	assert.Equal(t, true, envelope.Data["authenticated"])
	assert.Equal(t, "2030-01-01T00:00:00Z", envelope.Data["expires_at"])
}

func TestCLI_WhoamiWithOpaqueToken(t *testing.T) {
	store := newStorePath(t)

	res := runCLI(t, store, "", "login", "alice", "--token", "opaque-token")
	require.Equal(t, errors.ExitSuccess, res.code, res.stderr)

	res = runCLI(t, store, "", "whoami")
	require.Equal(t, errors.ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "✓ Session token stored for alice\n", res.stdout)
}

func TestCLI_TokenPrecedence(t *testing.T) {
	store := newStorePath(t)

	res := runCLI(t, store, "", "login", "alice", "--token", "stored")
	require.Equal(t, errors.ExitSuccess, res.code, res.stderr)

	t.Setenv("SSLVPN_JWT_TOKEN", "from-env")
	res = runCLI(t, store, "", "token")
	assert.Equal(t, "from-env\n", res.stdout)

	res = runCLI(t, store, "", "token", "--token", "from-flag")
	assert.Equal(t, "from-flag\n", res.stdout)
}

func TestCLI_TokenJSON(t *testing.T) {
	store := newStorePath(t)

	res := runCLI(t, store, "", "login", "alice", "--token", "abc.def.ghi")
	require.Equal(t, errors.ExitSuccess, res.code, res.stderr)

	res = runCLI(t, store, "", "token", "--json")
	require.Equal(t, errors.ExitSuccess, res.code, res.stderr)
	assert.JSONEq(t, `{"success": true, "data": {"token": "abc.def.ghi"}}`, res.stdout)
}

func TestCLI_TokenInspect(t *testing.T) {
	store := newStorePath(t)
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	res := runCLI(t, store, "", "login", "alice", "--token", testJWT(t, "alice", expires))
	require.Equal(t, errors.ExitSuccess, res.code, res.stderr)

	res = runCLI(t, store, "", "token", "inspect")
	require.Equal(t, errors.ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "admin_user:")
	assert.Contains(t, res.stdout, "alice")
	assert.Contains(t, res.stdout, "exp:")
	assert.Contains(t, res.stdout, "2030-01-01T00:00:00Z")
}

func TestCLI_TokenInspectRejectsOpaqueToken(t *testing.T) {
	store := newStorePath(t)

	res := runCLI(t, store, "", "token", "inspect", "--token", "not-a-jwt")
	assert.Equal(t, errors.ExitInvalidArguments, res.code)
	assert.Contains(t, res.stderr, "failed to decode token")
}

func TestCLI_UserSetKeepsToken(t *testing.T) {
	store := newStorePath(t)

	res := runCLI(t, store, "", "user")
	assert.Equal(t, errors.ExitNotFound, res.code)

	res = runCLI(t, store, "", "login", "alice", "--token", "t1")
	require.Equal(t, errors.ExitSuccess, res.code, res.stderr)

	res = runCLI(t, store, "", "user", "set", "bob")
	require.Equal(t, errors.ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "✓ User set to bob\n", res.stdout)

	res = runCLI(t, store, "", "token")
	assert.Equal(t, "t1\n", res.stdout)
}

func TestCLI_InvalidStorage(t *testing.T) {
	newStorePath(t)

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"--storage", "redis://localhost", "token"})
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	code := errors.Report(&stderr, cmd.Execute())
	assert.Equal(t, errors.ExitInvalidArguments, code)
	assert.Contains(t, stderr.String(), "unsupported storage scheme")
}
