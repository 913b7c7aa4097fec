package access

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/parttrack/parttrack-backend/internal/users"
	"github.com/parttrack/parttrack-backend/pkg/auth"
	"github.com/parttrack/parttrack-backend/pkg/config"
	"github.com/parttrack/parttrack-backend/pkg/db/models"
	"github.com/parttrack/parttrack-backend/pkg/enums"
	pkgerrors "github.com/parttrack/parttrack-backend/pkg/errors"
	"github.com/parttrack/parttrack-backend/pkg/logger"
	"github.com/parttrack/parttrack-backend/pkg/redis"
	"github.com/parttrack/parttrack-backend/pkg/security"
)

// ScanKind classifies what a scanned token resolved to.
type ScanKind string

const (
	ScanKindOperator    ScanKind = "operator"
	ScanKindAwaitingPin ScanKind = "awaiting_pin"
	ScanKindLocation    ScanKind = "location"
)

// SupervisorOperatorID identifies the sentinel supervisor in audit entries
// and minted tokens.
const SupervisorOperatorID = "SUP_ADMIN"

// ScanResult is the routing outcome of one scanned token.
type ScanResult struct {
	Kind ScanKind `json:"kind"`

	// Operator is set for operator scans, together with Token.
	Operator *models.User `json:"operator,omitempty"`
	Token    string       `json:"token,omitempty"`

	// Challenge is set when a PIN entry round is required.
	Challenge *PinChallenge `json:"challenge,omitempty"`

	// Location is the rack-row-bin label for location scans.
	Location string `json:"location,omitempty"`
}

// PinChallenge is the client's handle for a pending PIN entry round.
type PinChallenge struct {
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"expiresAt"`
	// LockedUntil guards against scanner tail input being read as PIN digits.
	LockedUntil time.Time `json:"lockedUntil"`
}

// AuthResult is a completed supervisor authentication.
type AuthResult struct {
	Token        string          `json:"token"`
	OperatorID   string          `json:"operatorId"`
	OperatorName string          `json:"operatorName"`
	Role         enums.ActorRole `json:"role"`
}

// challengeState is the redis-persisted side of a PinChallenge.
type challengeState struct {
	OperatorID   string    `json:"operatorId"`
	OperatorName string    `json:"operatorName"`
	LockedUntil  time.Time `json:"lockedUntil"`
}

// challengeStore is the slice of the redis client the gate uses.
type challengeStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	ChallengeKey(id string) string
	CounterKey(name string) string
}

// maxPinAttempts caps wrong PIN entries per challenge; after that the
// challenge is revoked and the supervisor has to rescan.
const maxPinAttempts = 5

// Service is the access gate: it routes scan tokens and runs the supervisor
// PIN handshake.
type Service interface {
	Scan(ctx context.Context, token string) (*ScanResult, error)
	SubmitPin(ctx context.Context, challengeID, pin string) (*AuthResult, error)
}

type service struct {
	cfg     config.AccessGateConfig
	jwt     config.JWTConfig
	users   users.Service
	store   challengeStore
	logg    *logger.Logger
	now     func() time.Time
	newUUID func() string
}

// NewService wires the access gate.
func NewService(
	cfg config.AccessGateConfig,
	jwtCfg config.JWTConfig,
	userSvc users.Service,
	store challengeStore,
	logg *logger.Logger,
) (Service, error) {
	if userSvc == nil {
		return nil, fmt.Errorf("users service required")
	}
	if store == nil {
		return nil, fmt.Errorf("challenge store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.AdminPINHash == "" {
		return nil, fmt.Errorf("admin pin hash required")
	}
	return &service{
		cfg:     cfg,
		jwt:     jwtCfg,
		users:   userSvc,
		store:   store,
		logg:    logg,
		now:     time.Now,
		newUUID: uuid.NewString,
	}, nil
}

// Scan resolves one token. Location codes route to a location view,
// supervisor credentials open a PIN challenge, operator badges authenticate
// directly. Unknown tokens are denied with the raw token echoed back so the
// kiosk can show what was read.
func (s *service) Scan(ctx context.Context, token string) (*ScanResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scan token required")
	}

	if strings.HasPrefix(token, s.cfg.LocationPrefix) {
		label := strings.TrimSpace(strings.TrimPrefix(token, s.cfg.LocationPrefix))
		if label == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "location label required")
		}
		return &ScanResult{Kind: ScanKindLocation, Location: label}, nil
	}

	if token == s.cfg.SupervisorToken {
		return s.beginChallenge(ctx, SupervisorOperatorID, s.cfg.SupervisorName)
	}

	user, err := s.users.FindByID(ctx, token)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeAccessDenied, "unrecognized credential").WithDetails(token)
		}
		return nil, err
	}

	// Supervisor-flagged badges go through the same PIN handshake as the
	// sentinel card.
	if user.IsSupervisor {
		return s.beginChallenge(ctx, user.ID, user.Name)
	}

	minted, err := auth.MintAccessToken(s.jwt, s.now(), auth.AccessTokenPayload{
		OperatorID:   user.ID,
		OperatorName: user.Name,
		Role:         enums.ActorRoleOperator,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint operator token")
	}

	ctx = s.logg.WithOperatorID(ctx, user.ID)
	s.logg.Info(ctx, "operator authenticated")
	return &ScanResult{Kind: ScanKindOperator, Operator: user, Token: minted}, nil
}

func (s *service) beginChallenge(ctx context.Context, operatorID, operatorName string) (*ScanResult, error) {
	now := s.now()
	state := challengeState{
		OperatorID:   operatorID,
		OperatorName: operatorName,
		LockedUntil:  now.Add(s.cfg.PinLockWindow),
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode pin challenge")
	}

	id := s.newUUID()
	if err := s.store.Set(ctx, s.store.ChallengeKey(id), raw, s.cfg.ChallengeTTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store pin challenge")
	}

	ctx = s.logg.WithOperatorID(ctx, operatorID)
	s.logg.Info(ctx, "pin challenge opened")
	return &ScanResult{
		Kind: ScanKindAwaitingPin,
		Challenge: &PinChallenge{
			ID:          id,
			ExpiresAt:   now.Add(s.cfg.ChallengeTTL),
			LockedUntil: state.LockedUntil,
		},
	}, nil
}

// SubmitPin completes a pending challenge. A wrong PIN keeps the challenge
// open for another attempt until its TTL runs out or the attempt cap is hit.
func (s *service) SubmitPin(ctx context.Context, challengeID, pin string) (*AuthResult, error) {
	challengeID = strings.TrimSpace(challengeID)
	if challengeID == "" || pin == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "challenge id and pin required")
	}

	key := s.store.ChallengeKey(challengeID)
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if redis.IsNil(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "pin challenge expired")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pin challenge")
	}

	var state challengeState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode pin challenge")
	}

	// Inside the lock window the digits are most likely scanner tail input,
	// not a human typing.
	if s.now().Before(state.LockedUntil) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "pin entry locked, retry")
	}

	ok, err := security.VerifyPIN(pin, s.cfg.AdminPINHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify pin")
	}
	counterKey := s.store.CounterKey("pin_fail:" + challengeID)
	if !ok {
		s.logg.Warn(ctx, "pin rejected")
		attempts, err := s.store.Incr(ctx, counterKey)
		if err != nil {
			s.logg.Warn(ctx, "count pin failure failed")
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid pin")
		}
		if err := s.store.Expire(ctx, counterKey, s.cfg.ChallengeTTL); err != nil {
			s.logg.Warn(ctx, "expire pin failure counter failed")
		}
		if attempts >= maxPinAttempts {
			if err := s.store.Del(ctx, key, counterKey); err != nil {
				s.logg.Warn(ctx, "revoke pin challenge failed")
			}
			s.logg.Warn(ctx, "pin challenge revoked after repeated failures")
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "too many pin attempts, rescan to retry")
		}
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid pin")
	}

	if err := s.store.Del(ctx, key, counterKey); err != nil {
		s.logg.Warn(ctx, "clear pin challenge failed")
	}

	minted, err := auth.MintAccessToken(s.jwt, s.now(), auth.AccessTokenPayload{
		OperatorID:   state.OperatorID,
		OperatorName: state.OperatorName,
		Role:         enums.ActorRoleSupervisor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint supervisor token")
	}

	ctx = s.logg.WithOperatorID(ctx, state.OperatorID)
	ctx = s.logg.WithActorRole(ctx, enums.ActorRoleSupervisor.String())
	s.logg.Info(ctx, "supervisor authenticated")
	return &AuthResult{
		Token:        minted,
		OperatorID:   state.OperatorID,
		OperatorName: state.OperatorName,
		Role:         enums.ActorRoleSupervisor,
	}, nil
}
