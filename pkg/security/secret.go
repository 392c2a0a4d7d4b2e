package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// ClientSecretBytes is the entropy of a device client secret before hex
// encoding.
const ClientSecretBytes = 20

// GenerateClientSecret produces a hex-encoded random secret for a device.
func GenerateClientSecret() (string, error) {
	buf := make([]byte, ClientSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate client secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// NewVerificationCode returns an opaque one-time code for email verification.
func NewVerificationCode() string {
	return uuid.NewString()
}
