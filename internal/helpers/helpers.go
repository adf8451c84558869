package helpers

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// NormalizePhone strips formatting characters and prefixes the default
// country code when the number carries no leading +. Numbers already in
// country-coded form are left unchanged.
func NormalizePhone(phone, defaultCountryCode string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))

	if cleaned == "" || strings.HasPrefix(cleaned, "+") {
		return cleaned
	}
	return defaultCountryCode + cleaned
}

// RandomNumericCode generates a uniformly random decimal code of the given
// length. Leading zeros are allowed.
func RandomNumericCode(length int) (string, error) {
	const digits = "0123456789"
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %v", err)
		}
		b[i] = digits[n.Int64()]
	}
	return string(b), nil
}

// UniquePhotoName prefixes the original filename with a random token so
// uploads from different workers never collide in the bucket.
func UniquePhotoName(original string) string {
	return uuid.New().String() + "_" + filepath.Base(original)
}
