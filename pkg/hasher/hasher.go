package hasher

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

const cost = 10

// HashKey returns the bcrypt hash stored in the inventory for an api key.
func HashKey(key []byte) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(key, cost)
	return string(hash), err
}

func KeyMatches(key, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}

// GenerateKey returns length random bytes, url safe base64 encoded.
func GenerateKey(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
