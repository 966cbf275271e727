package service

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

func newID() string {
	return uuid.NewString()
}

// newShareToken returns the opaque credential embedded in share URLs. Hex keeps
// it URL-safe without escaping; 20 random bytes keeps it unguessable.
func newShareToken() string {
	return randomHex(20)
}

func randomHex(size int) string {
	bytes := make([]byte, size)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
