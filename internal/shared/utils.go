// Package shared provides random secrets and memory wiping for credentials.
package shared

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString returns size random bytes hex-encoded, so the result is
// 2*size characters long. The development backend uses it for a signing
// secret when none is configured.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray zeroes b. The CLI calls it on password buffers once they have
// been turned into a request.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
