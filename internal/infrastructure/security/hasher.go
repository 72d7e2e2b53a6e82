// Package security hashes staff credentials.
package security

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Changing any of them invalidates stored hashes.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 2
	argonKeyLen  = 32
)

// ErrEmptySalt is returned when the hasher is built without a salt.
var ErrEmptySalt = errors.New("security: password salt must not be empty")

// Hasher derives a stable, non-reversible hash from a password. The same
// plaintext always yields the same hash for a given salt, so hashes can be
// compared directly.
type Hasher struct {
	salt []byte
}

// NewHasher creates a Hasher with an installation-wide salt.
func NewHasher(salt string) (*Hasher, error) {
	if salt == "" {
		return nil, ErrEmptySalt
	}
	return &Hasher{salt: []byte(salt)}, nil
}

// Hash returns the hex-encoded argon2id digest of password.
func (h *Hasher) Hash(password string) string {
	key := argon2.IDKey([]byte(password), h.salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return hex.EncodeToString(key)
}

// Verify reports whether password matches hash in constant time.
func (h *Hasher) Verify(password, hash string) bool {
	computed := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}
