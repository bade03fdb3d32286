package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Rounds = 100_000
	pbkdf2KeyLen = 64
	saltLen      = 16
)

// HashPassword derives a PBKDF2-SHA512 digest with a fresh random salt.
// Both return values are hex strings.
func HashPassword(password string) (hash, salt string, err error) {
	raw := make([]byte, saltLen)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}
	dk := pbkdf2.Key([]byte(password), raw, pbkdf2Rounds, pbkdf2KeyLen, sha512.New)
	return hex.EncodeToString(dk), hex.EncodeToString(raw), nil
}

// VerifyPassword re-derives the digest for the candidate password and
// compares it in constant time.
func VerifyPassword(password, hash, salt string) bool {
	raw, err := hex.DecodeString(salt)
	if err != nil {
		return false
	}
	dk := pbkdf2.Key([]byte(password), raw, pbkdf2Rounds, pbkdf2KeyLen, sha512.New)
	want, err := hex.DecodeString(hash)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(dk, want) == 1
}
