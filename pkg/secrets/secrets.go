// Package secrets hashes local user passwords and generates session signing keys.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/bcrypt"

	dErrors "dingauth/pkg/domain-errors"
)

// MinSigningKeyBytes matches the minimum session signing key length accepted by config.
const MinSigningKeyBytes = 16

// GenerateSigningKey returns n random bytes, base64url encoded, for use as
// session.signing_key.
func GenerateSigningKey(n int) (string, error) {
	if n < MinSigningKeyBytes {
		n = MinSigningKeyBytes
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate signing key")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashPassword bcrypt-hashes a seeded user's password for LocalUser.PasswordHash.
func HashPassword(plain string) (string, error) {
	if plain == "" {
		return "", dErrors.New(dErrors.CodeValidation, "password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "password is too long")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not hash password")
	}
	return string(hashed), nil
}

// IsHashed reports whether value already looks like a bcrypt hash.
func IsHashed(value string) bool {
	_, err := bcrypt.Cost([]byte(value))
	return err == nil
}

// VerifyPassword checks plain against a bcrypt hash.
func VerifyPassword(plain, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return dErrors.New(dErrors.CodeUnauthorized, "invalid password")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not verify password")
	}
	return nil
}
