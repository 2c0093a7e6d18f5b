// Package auth implements password hashing, session management and the
// account service used by the HTTP layer.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLength     = 32
	hashIterations = 100_000
	hashKeyLength  = 128
)

// NewSalt returns cryptographically random salt bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// HashPassword derives a PBKDF2-HMAC-SHA256 key from password and salt.
func HashPassword(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, hashIterations, hashKeyLength, sha256.New)
}

// VerifyPassword reports whether password derives storedHash under salt.
// The comparison is constant time.
func VerifyPassword(password string, salt, storedHash []byte) bool {
	computed := HashPassword(password, salt)
	return subtle.ConstantTimeCompare(computed, storedHash) == 1
}
