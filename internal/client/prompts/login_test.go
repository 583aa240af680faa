package prompts

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompter_ReadsConsecutiveAnswers(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("  alice \nabc.def.ghi\n"), &out)

	username, err := p.PromptUsername()
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	token, err := p.PromptToken()
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	assert.Equal(t, "Username: Token: ", out.String())
}

func TestPrompter_LastLineWithoutNewline(t *testing.T) {
	p := NewPrompter(strings.NewReader("abc.def.ghi"), io.Discard)

	token, err := p.PromptToken()
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)
}

func TestPrompter_EmptyInput(t *testing.T) {
	p := NewPrompter(strings.NewReader(""), io.Discard)

	_, err := p.PromptUsername()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read username")
}

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			p := NewPrompter(strings.NewReader(tt.input), io.Discard)
			assert.Equal(t, tt.expected, p.Confirm("replace stored user"))
		})
	}
}
