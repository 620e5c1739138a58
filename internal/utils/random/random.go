// Package random generates the unguessable tokens used in the OAuth
// login flow.
package random

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Base64URL returns a URL-safe random string from length bytes of
// crypto/rand entropy. Used for the OAuth state parameter, which rides
// in a redirect URL and must survive untouched.
func Base64URL(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
