package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashSecret returns the lower-case hex SHA-256 digest of secret.
// Session ids and stored OTP values are both derived with it.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
