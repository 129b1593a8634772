package security_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/buy2brands/wholesale-api/pkg/config"
	"github.com/buy2brands/wholesale-api/pkg/security"
)

const goodPassword = "Wholesale2026"

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerify(t *testing.T) {
	hasher := security.NewHasher(testPasswordConfig())
	hash, err := hasher.Hash(goodPassword)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=32768,t=1,p=1$"))

	res, err := hasher.Verify(goodPassword, hash)
	require.NoError(t, err)
	assert.Equal(t, security.Verification{Match: true}, res)

	res, err = hasher.Verify("Wholesale2025", hash)
	require.NoError(t, err)
	assert.False(t, res.Match)
}

func TestVerifyFlagsOutdatedArgonParameters(t *testing.T) {
	old := security.NewHasher(testPasswordConfig())
	hash, err := old.Hash(goodPassword)
	require.NoError(t, err)

	stronger := testPasswordConfig()
	stronger.ArgonTime = 3
	res, err := security.NewHasher(stronger).Verify(goodPassword, hash)
	require.NoError(t, err)
	assert.True(t, res.Match)
	assert.True(t, res.NeedsRehash)
}

func TestVerifyAcceptsLegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("Legacy123"), bcrypt.MinCost)
	require.NoError(t, err)
	hasher := security.NewHasher(testPasswordConfig())

	res, err := hasher.Verify("Legacy123", string(legacy))
	require.NoError(t, err)
	assert.Equal(t, security.Verification{Match: true, NeedsRehash: true}, res)

	res, err = hasher.Verify("Legacy124", string(legacy))
	require.NoError(t, err)
	assert.False(t, res.Match)
}

func TestCheckStrength(t *testing.T) {
	for _, weak := range []string{"Ab1", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"} {
		assert.ErrorIs(t, security.CheckStrength(weak), security.ErrWeakPassword, weak)
	}
	assert.NoError(t, security.CheckStrength(goodPassword))

	_, err := security.NewHasher(testPasswordConfig()).Hash("short")
	assert.ErrorIs(t, err, security.ErrWeakPassword)
}

func TestVerifyRejectsMalformedHashes(t *testing.T) {
	hasher := security.NewHasher(testPasswordConfig())
	for _, bad := range []string{
		"not-a-hash",
		"$argon2id$v=18$m=1,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$2a$10$tooshort",
	} {
		_, err := hasher.Verify("Anything1", bad)
		assert.ErrorIs(t, err, security.ErrInvalidHash, bad)
	}
}
