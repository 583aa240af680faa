package validation

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidateUsername rejects usernames that would be unusable at the login prompt:
// empty, surrounded by whitespace, or containing control characters
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if strings.TrimSpace(username) != username {
		return fmt.Errorf("username cannot start or end with whitespace, got: '%s'", username)
	}
	for _, r := range username {
		if unicode.IsControl(r) {
			return fmt.Errorf("username cannot contain control characters")
		}
	}
	return nil
}

// ValidateTokenInput rejects an empty token or one spanning several lines.
// The token itself is opaque and is not parsed.
func ValidateTokenInput(token string) error {
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}
	if strings.ContainsAny(token, "\r\n") {
		return fmt.Errorf("token must be a single line")
	}
	return nil
}
