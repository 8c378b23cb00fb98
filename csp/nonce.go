package csp

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// nonceBytes is the entropy per nonce. 18 bytes clears the 16-byte
// floor and encodes to 24 base64url characters with no padding.
const nonceBytes = 18

// NewNonce returns a fresh URL- and header-safe nonce token. A nonce is
// generated at most once per render and must never be reused across
// renders. Failure of the secure random source is fatal to the render;
// there is no fallback.
func NewNonce() (string, error) {
	b := make([]byte, nonceBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("csp: nonce generation failed: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
