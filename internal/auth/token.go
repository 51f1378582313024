package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// tokenBytes gives 256 bits of entropy, hex-encoded to 64 characters.
// Session ids, verification tokens and reset tokens all share this shape.
const tokenBytes = 32

// generateToken creates a cryptographically secure random token
func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
