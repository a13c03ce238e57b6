package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

const (
	saltLength   = 32
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
)

// PasswordManager hashes and verifies passwords using scrypt
type PasswordManager struct{}

// NewPasswordManager creates a new password manager
func NewPasswordManager() *PasswordManager {
	return &PasswordManager{}
}

// HashPassword derives a salted scrypt hash and encodes salt||hash as base64
func (p *PasswordManager) HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	combined := make([]byte, 0, len(salt)+len(hash))
	combined = append(combined, salt...)
	combined = append(combined, hash...)
	return base64.StdEncoding.EncodeToString(combined), nil
}

// VerifyPassword checks a password against a stored hash in constant time
func (p *PasswordManager) VerifyPassword(password, encoded string) (bool, error) {
	combined, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return false, fmt.Errorf("failed to decode password hash: %w", err)
	}
	if len(combined) != saltLength+scryptKeyLen {
		return false, fmt.Errorf("invalid password hash length: %d", len(combined))
	}

	salt := combined[:saltLength]
	stored := combined[saltLength:]

	hash, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	return subtle.ConstantTimeCompare(stored, hash) == 1, nil
}
