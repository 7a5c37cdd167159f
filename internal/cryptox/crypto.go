// Package cryptox derives and verifies password hashes.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/signify/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16
	keySize  = 32
)

// argon2id parameters (RFC 9106 second recommended option, lowered memory).
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// DerivePasswordHash stretches password with argon2id under salt.
func DerivePasswordHash(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, keySize)
}

// HashPassword returns a fresh random salt and the matching hash.
func HashPassword(password string) (salt []byte, hash []byte) {
	salt = common.GenerateRandByteArray(SaltSize)
	pw := []byte(password)
	defer common.WipeByteArray(pw)
	return salt, DerivePasswordHash(pw, salt)
}

// VerifyPassword recomputes the hash for candidate and compares it in
// constant time.
func VerifyPassword(candidate string, salt, hash []byte) bool {
	pw := []byte(candidate)
	defer common.WipeByteArray(pw)
	return subtle.ConstantTimeCompare(DerivePasswordHash(pw, salt), hash) == 1
}
