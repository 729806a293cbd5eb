package keygen

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID generates a random UUID v4
func GenerateUUID() string {
	return uuid.New().String()
}

// NewTaskID returns "task_" followed by 32 hex characters.
func NewTaskID() string {
	return "task_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

// NewSessionID returns an opaque id for a login session.
func NewSessionID() string {
	return "sess_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

// GenerateEncryptionKey returns 32 random bytes, base64 encoded, suitable for
// security.encryption_key.
func GenerateEncryptionKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
