package security

import (
	"testing"

	"github.com/parttrack/parttrack-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArgonConfig() config.ArgonConfig {
	// Small parameters to keep the test fast.
	return config.ArgonConfig{
		MemoryKB:    8,
		Time:        1,
		Parallelism: 1,
		SaltLen:     8,
		KeyLen:      16,
	}
}

func TestHashAndVerifyPIN(t *testing.T) {
	encoded, err := HashPIN("1234", testArgonConfig())
	require.NoError(t, err)
	require.Contains(t, encoded, "$argon2id$")

	ok, err := VerifyPIN("1234", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPIN("4321", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPIN_SaltsDiffer(t *testing.T) {
	first, err := HashPIN("1234", testArgonConfig())
	require.NoError(t, err)
	second, err := HashPIN("1234", testArgonConfig())
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestVerifyPIN_RejectsMalformedHash(t *testing.T) {
	_, err := VerifyPIN("1234", "not-a-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)
}
