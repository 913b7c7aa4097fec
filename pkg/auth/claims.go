package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/parttrack/parttrack-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	OperatorID   string
	OperatorName string
	Role         enums.ActorRole
	JTI          string
}

// AccessTokenClaims is the JWT claim set granted by the access gate.
type AccessTokenClaims struct {
	OperatorID   string          `json:"operator_id"`
	OperatorName string          `json:"operator_name"`
	Role         enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}
