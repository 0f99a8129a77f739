// Package apikey generates the credentials bound to registered sites.
package apikey

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

// Prefix identifies botwall keys in logs and support tickets without
// exposing the secret part.
const Prefix = "bw_"

// keyBytes is the entropy drawn per key. 32 bytes is double the
// 128-bit floor required to make guessing infeasible.
const keyBytes = 32

// Generate produces a URL-safe API key from a cryptographically secure
// random source. Uniqueness is additionally enforced by the storage
// layer's unique constraint, not trusted from randomness alone.
func Generate() (string, error) {
	b := make([]byte, keyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read entropy: %w", err)
	}
	return Prefix + base64.RawURLEncoding.EncodeToString(b), nil
}

// Redact returns a loggable form of a key: the prefix plus the first
// four characters of the secret part.
func Redact(key string) string {
	secret := strings.TrimPrefix(key, Prefix)
	if len(secret) <= 4 {
		return Prefix + "****"
	}
	return Prefix + secret[:4] + "****"
}
