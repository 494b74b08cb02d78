package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Low-cost parameters keep the test suite fast; production values come
// from configuration.
func testHasher() *PasswordHasher {
	return NewPasswordHasher(1, 8192, 2)
}

func TestHashAndVerify(t *testing.T) {
	h := testHasher()

	encoded, err := h.Hash("s3cret-Passw0rd")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=2$"))

	ok, err := h.Verify("s3cret-Passw0rd", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong-password", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashUsesFreshSalt(t *testing.T) {
	h := testHasher()

	first, err := h.Hash("same-input")
	require.NoError(t, err)
	second, err := h.Hash("same-input")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	_, err := testHasher().Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	h := testHasher()

	for _, encoded := range []string{
		"",
		"not-a-hash",
		"$argon2i$v=19$m=8192,t=1,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=2$c2FsdA",
		"$argon2id$v=19$m=8192,t=1,p=2$!!!$aGFzaA",
	} {
		_, err := h.Verify("whatever", encoded)
		assert.ErrorIs(t, err, ErrInvalidHash, "encoded=%q", encoded)
	}
}

func TestVerifyRejectsWrongVersion(t *testing.T) {
	_, err := testHasher().Verify("whatever", "$argon2id$v=18$m=8192,t=1,p=2$c2FsdA$aGFzaA")
	assert.ErrorIs(t, err, ErrIncompatibleVersion)
}

func TestVerifyHonorsStoredParameters(t *testing.T) {
	old := NewPasswordHasher(1, 8192, 2)
	encoded, err := old.Hash("carry-over-Pass1")
	require.NoError(t, err)

	// A hasher with different costs must still verify the old hash.
	current := NewPasswordHasher(2, 16384, 4)
	ok, err := current.Verify("carry-over-Pass1", encoded)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNeedsRehash(t *testing.T) {
	old := NewPasswordHasher(1, 8192, 2)
	encoded, err := old.Hash("carry-over-Pass1")
	require.NoError(t, err)

	assert.False(t, old.NeedsRehash(encoded))
	assert.True(t, NewPasswordHasher(2, 8192, 2).NeedsRehash(encoded))
	assert.True(t, NewPasswordHasher(1, 16384, 2).NeedsRehash(encoded))
	assert.True(t, testHasher().NeedsRehash("garbage"))
}

func TestNewSessionToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		token, err := NewSessionToken()
		require.NoError(t, err)

		// 32 bytes in unpadded base64 is 43 characters.
		assert.Len(t, token, 43)
		assert.NotContains(t, token, "=")
		assert.NotContains(t, token, "+")
		assert.NotContains(t, token, "/")
		assert.False(t, seen[token], "token repeated")
		seen[token] = true
	}
}
