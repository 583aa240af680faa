package output

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputJSON(t *testing.T) {
	tests := []struct {
		name   string
		data   interface{}
		err    error
		expect string
	}{
		{
			name:   "success",
			data:   map[string]string{"user": "alice"},
			expect: `{"success": true, "data": {"user": "alice"}}`,
		},
		{
			name:   "failure",
			err:    errors.New("no session token stored"),
			expect: `{"success": false, "data": null, "error": "no session token stored"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, OutputJSON(&buf, tt.data, tt.err))
			assert.JSONEq(t, tt.expect, buf.String())
		})
	}
}

func TestOutputJSON_EncodeError(t *testing.T) {
	var buf bytes.Buffer
	err := OutputJSON(&buf, make(chan int), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode JSON")
}

func TestTableWriter(t *testing.T) {
	var buf bytes.Buffer
	tw := NewTableWriter(&buf)
	tw.WriteRow("user:", "alice")
	tw.WriteRow("expires:", "2030-01-01T00:00:00Z")
	require.NoError(t, tw.Flush())

	assert.Equal(t, "user:     alice\nexpires:  2030-01-01T00:00:00Z\n", buf.String())
}

func TestPrintMessages(t *testing.T) {
	var buf bytes.Buffer
	PrintSuccess(&buf, "Logged out successfully")
	PrintError(&buf, "Login cancelled")

	assert.Equal(t, "✓ Logged out successfully\n✗ Login cancelled\n", buf.String())
}
