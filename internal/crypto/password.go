package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword bcrypts a SHA-256 digest of password, so passwords longer
// than bcrypt's 72-byte input limit are hashed in full.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(prehash(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword returns nil when password matches hash. Rows written before
// hashing was introduced hold the raw password; those are compared in
// constant time so existing accounts keep working until their next update.
func CheckPassword(hash, password string) error {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		if subtle.ConstantTimeCompare([]byte(hash), []byte(password)) == 1 {
			return nil
		}
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(password))
}

// prehash yields 44 bytes of base64, inside bcrypt's limit and free of NUL.
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}
