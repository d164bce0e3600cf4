package service

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"
)

const (
	joinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	joinCodeLength   = 8
)

// GenerateJoinCode returns a random 8-character code over A-Z and 0-9.
func GenerateJoinCode() (string, error) {
	size := big.NewInt(int64(len(joinCodeAlphabet)))
	code := make([]byte, joinCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("generate join code: %w", err)
		}
		code[i] = joinCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// VerifyJoinCode reports whether submitted exactly matches stored.
func VerifyJoinCode(stored, submitted string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}

// JoinCodeExpired reports whether a code created at createdAt is older than
// ttl at now. A zero ttl never expires.
func JoinCodeExpired(createdAt, now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(createdAt) > ttl
}
