package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

var hashSalt string

func init() {
	// Load salt from environment or fall back to a development default.
	// In production, set LOG_HASH_SALT and call InitHashSalt from main.
	hashSalt = os.Getenv("LOG_HASH_SALT")
	if hashSalt == "" {
		hashSalt = "default-salt-change-in-production"
	}
}

// InitHashSalt enforces a real salt at startup. Panics when LOG_HASH_SALT is
// missing or shorter than 32 characters.
func InitHashSalt() {
	salt := os.Getenv("LOG_HASH_SALT")
	if len(salt) < 32 {
		panic("LOG_HASH_SALT must be set and at least 32 characters")
	}
	hashSalt = salt
}

// InitHashSaltForTesting sets the salt directly, bypassing the env check.
func InitHashSaltForTesting(salt string) {
	hashSalt = salt
}

// HashEmail creates a privacy-preserving hash of a user email.
// This allows tracing a user's claims and notifications through the logs
// without exposing the address itself.
func HashEmail(email string) string {
	data := fmt.Sprintf("%s:%s", strings.ToLower(email), hashSalt)
	hash := sha256.Sum256([]byte(data))
	// First 8 characters are enough to correlate log lines.
	return hex.EncodeToString(hash[:])[:8]
}

// SanitizeText redacts user-provided free text (claim descriptions, rejection
// reasons) while preserving length information for debugging.
func SanitizeText(text string) string {
	if text == "" {
		return "<empty>"
	}

	if len(text) <= 10 {
		return fmt.Sprintf("<%d chars>", len(text))
	}

	return fmt.Sprintf("%s...<%d chars>", text[:3], len(text))
}
