package tokens

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// RefreshIDBytes es la entropía del jti de los refresh tokens.
const RefreshIDBytes = 32

// GenerateOpaqueToken genera un identificador aleatorio (base64url sin padding).
func GenerateOpaqueToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		return "", fmt.Errorf("tokens: invalid size %d", nBytes)
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("tokens: rand: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
