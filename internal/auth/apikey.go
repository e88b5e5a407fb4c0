package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"math/big"
)

// HeaderName is the request header carrying the shared secret.
const HeaderName = "X-API-Key"

// DefaultKeyLength is the length of keys produced by GenerateKey when no
// length is requested.
const DefaultKeyLength = 32

const keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ErrInvalidLength is returned when a non-positive key length is requested.
var ErrInvalidLength = errors.New("key length must be positive")

// GenerateKey returns a random alphanumeric key of the given length.
func GenerateKey(length int) (string, error) {
	if length <= 0 {
		return "", ErrInvalidLength
	}

	max := big.NewInt(int64(len(keyAlphabet)))
	key := make([]byte, length)
	for i := range key {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		key[i] = keyAlphabet[n.Int64()]
	}
	return string(key), nil
}

// Matches reports whether the presented credential equals the configured
// secret. An empty secret never matches.
func Matches(presented, secret string) bool {
	if secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) == 1
}
