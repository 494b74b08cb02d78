// Package auth provides password hashing and session token generation.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrInvalidHash         = errors.New("invalid password hash format")
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
)

// PasswordHasher produces and verifies Argon2id hashes in PHC string
// format, e.g. $argon2id$v=19$m=102400,t=2,p=8$<salt>$<hash>.
type PasswordHasher struct {
	time      uint32
	memoryKiB uint32
	threads   uint8
	saltLen   uint32
	keyLen    uint32
}

// NewPasswordHasher returns a hasher with the given cost parameters and a
// 16-byte salt / 32-byte key.
func NewPasswordHasher(time, memoryKiB uint32, threads uint8) *PasswordHasher {
	return &PasswordHasher{
		time:      time,
		memoryKiB: memoryKiB,
		threads:   threads,
		saltLen:   16,
		keyLen:    32,
	}
}

// Hash derives a key from the password under a fresh random salt and
// returns the PHC-encoded result.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, h.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.time, h.memoryKiB, h.threads, h.keyLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.memoryKiB, h.time, h.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify reports whether password matches the encoded hash. The stored
// parameters are used for derivation so old hashes keep verifying after a
// cost change. Comparison is constant time.
func (h *PasswordHasher) Verify(password, encoded string) (bool, error) {
	params, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt, params.time, params.memoryKiB, params.threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(candidate, key) == 1, nil
}

// NeedsRehash reports whether the encoded hash was produced with weaker
// cost parameters than the hasher currently carries. Malformed hashes also
// report true so they get replaced on the next successful login.
func (h *PasswordHasher) NeedsRehash(encoded string) bool {
	params, _, _, err := decodeHash(encoded)
	if err != nil {
		return true
	}
	return params.memoryKiB < h.memoryKiB || params.time < h.time || params.threads < h.threads
}

type hashParams struct {
	memoryKiB uint32
	time      uint32
	threads   uint8
}

func decodeHash(encoded string) (hashParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return hashParams{}, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return hashParams{}, nil, nil, ErrInvalidHash
	}
	if version != argon2.Version {
		return hashParams{}, nil, nil, ErrIncompatibleVersion
	}

	var p hashParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memoryKiB, &p.time, &p.threads); err != nil {
		return hashParams{}, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return hashParams{}, nil, nil, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return hashParams{}, nil, nil, ErrInvalidHash
	}

	return p, salt, key, nil
}
