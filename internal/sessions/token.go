package sessions

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenBytes yields 512 bits of entropy, encoded as 128 lowercase hex chars.
const tokenBytes = 64

// TokenLength is the encoded length of every generated session token.
const TokenLength = tokenBytes * 2

// GenerateToken produces a session token from the CSPRNG. Uniqueness is
// statistical: at 512 bits a collision is not a practical concern, and the
// store's unique index on the token column is only a backstop.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("sessions: generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// MaskToken returns the display-safe form of a token: first eight and last
// eight characters around a literal ellipsis. Raw tokens never leave the
// store after creation.
func MaskToken(token string) string {
	if len(token) < 16 {
		return token
	}
	return token[:8] + "..." + token[len(token)-8:]
}
