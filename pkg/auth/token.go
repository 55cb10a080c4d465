package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateToken returns 128 random bits as hex, used for jwt ids.
func GenerateToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
