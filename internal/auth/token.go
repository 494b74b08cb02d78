package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const tokenBytes = 32

// NewSessionToken returns 32 bytes of randomness in unpadded URL-safe
// base64. Tokens are opaque bearer values; validity lives in the sessions
// table, not in the token itself.
func NewSessionToken() (string, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
