// Package token generates opaque random identifiers.
package token

import (
	"crypto/rand"
	"encoding/hex"
)

// NewHex returns a hex string built from n random bytes.
func NewHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
