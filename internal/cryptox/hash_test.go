package cryptox

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fastParams keeps argon2 cheap enough for unit tests.
func fastParams() Params {
	return Params{Algorithm: Argon2id, Time: 1, MemoryKiB: 64, Threads: 1}
}

func TestHash_Argon2id_RoundTrip(t *testing.T) {
	h, err := NewHasher(fastParams())
	require.NoError(t, err)

	encoded, err := h.Hash("secret-password")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=64,t=1,p=1$"), encoded)

	assert.True(t, Verify("secret-password", encoded))
	assert.False(t, Verify("secret-passworD", encoded))
	assert.False(t, Verify("", encoded))
}

func TestHash_SaltedPerCall(t *testing.T) {
	h, err := NewHasher(fastParams())
	require.NoError(t, err)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, Verify("same", a))
	assert.True(t, Verify("same", b))
}

func TestHash_Bcrypt_RoundTrip(t *testing.T) {
	h, err := NewHasher(Params{Algorithm: Bcrypt, BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)

	encoded, err := h.Hash("hunter22")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(encoded, "$2a$"))

	assert.True(t, Verify("hunter22", encoded))
	assert.False(t, Verify("hunter23", encoded))
}

func TestHash_Bcrypt_LongSecrets(t *testing.T) {
	h, err := NewHasher(Params{Algorithm: Bcrypt, BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)

	email := strings.Repeat("a", 64) + "@example.com"
	password := strings.Repeat("p", 100)

	for _, secret := range []string{email, password} {
		encoded, err := h.Hash(secret)
		require.NoError(t, err)
		assert.True(t, Verify(secret, encoded))
	}

	// secrets sharing the first 72 bytes must still differ
	encoded, err := h.Hash(password)
	require.NoError(t, err)
	assert.False(t, Verify(strings.Repeat("p", 99)+"q", encoded))
}

func TestHash_LongSecretArgon2id(t *testing.T) {
	h, err := NewHasher(fastParams())
	require.NoError(t, err)

	long := strings.Repeat("a", 200) + "@example.com"
	encoded, err := h.Hash(long)
	require.NoError(t, err)
	assert.True(t, Verify(long, encoded))
}

func TestNewHasher_Errors(t *testing.T) {
	_, err := NewHasher(Params{Algorithm: "md5"})
	require.True(t, errors.Is(err, ErrUnknownAlgorithm))

	_, err = NewHasher(Params{Algorithm: Bcrypt, BcryptCost: 99})
	require.Error(t, err)
}

func TestNewHasher_FillsDefaults(t *testing.T) {
	h, err := NewHasher(Params{})
	require.NoError(t, err)
	assert.Equal(t, DefaultParams(), h.p)
}

func TestVerify_Malformed(t *testing.T) {
	cases := []string{
		"",
		"plain",
		"$argon2id$",
		"$argon2id$v=19$m=64,t=1,p=1$!!!$abc",
		"$argon2id$v=18$m=64,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=64,t=1,p=1$c2FsdA$",
		"$2a$broken",
	}
	for _, c := range cases {
		assert.False(t, Verify("x", c), c)
	}
}
