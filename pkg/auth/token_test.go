package auth

import (
	"testing"
	"time"

	"github.com/parttrack/parttrack-backend/pkg/config"
	"github.com/parttrack/parttrack-backend/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "parttrack-test",
		ExpirationMinutes: 60,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()

	signed, err := MintAccessToken(cfg, now, AccessTokenPayload{
		OperatorID:   "OPR_123456",
		OperatorName: "Nagendra",
		Role:         enums.ActorRoleOperator,
	})
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := ParseAccessToken(cfg, signed)
	require.NoError(t, err)
	assert.Equal(t, "OPR_123456", claims.OperatorID)
	assert.Equal(t, "Nagendra", claims.OperatorName)
	assert.Equal(t, enums.ActorRoleOperator, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestMintAccessToken_RejectsBadPayload(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()

	_, err := MintAccessToken(cfg, now, AccessTokenPayload{Role: enums.ActorRoleOperator})
	assert.Error(t, err, "missing operator id")

	_, err = MintAccessToken(cfg, now, AccessTokenPayload{OperatorID: "x", Role: "manager"})
	assert.Error(t, err, "invalid role")
}

func TestParseAccessToken_RejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		OperatorID: "OPR_1",
		Role:       enums.ActorRoleSupervisor,
	})
	require.NoError(t, err)

	other := cfg
	other.Secret = "different"
	_, err = ParseAccessToken(other, signed)
	assert.Error(t, err)
}

func TestParseAccessToken_RejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{
		OperatorID: "OPR_1",
		Role:       enums.ActorRoleOperator,
	})
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, signed)
	assert.Error(t, err)
}
