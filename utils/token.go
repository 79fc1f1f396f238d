package utils

import (
	"crypto/rand"
	"strings"
)

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// RandomToken returns an unguessable alphanumeric string of the given
// length, suitable for share tokens.
func RandomToken(length int) (string, error) {
	if length <= 0 {
		length = 32
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(buf), nil
}

// GenerateRecoveryKey returns a key of the form XXXXXX-XXXXXX-XXXXXX,
// shown to the user exactly once at signup.
func GenerateRecoveryKey() (string, error) {
	parts := make([]string, 3)
	for i := range parts {
		part, err := RandomToken(6)
		if err != nil {
			return "", err
		}
		parts[i] = strings.ToUpper(part)
	}
	return strings.Join(parts, "-"), nil
}
