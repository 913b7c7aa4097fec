package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/parttrack/parttrack-backend/pkg/db"
	"github.com/parttrack/parttrack-backend/pkg/db/models"
	pkgerrors "github.com/parttrack/parttrack-backend/pkg/errors"
	"github.com/parttrack/parttrack-backend/pkg/logger"
	"gorm.io/gorm"
)

// generatedIDPrefix heads credentials minted for new operators. Badge ids
// imported from elsewhere keep whatever prefix they came with.
const generatedIDPrefix = "OPR_"

// idMintAttempts bounds retries when a freshly minted id collides.
const idMintAttempts = 5

// Service manages the operator roster.
type Service interface {
	List(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Add(ctx context.Context, input AddInput) (*models.User, error)
	Remove(ctx context.Context, id string) error
}

// AddInput describes a new operator. ID is optional; a credential is minted
// when it is blank.
type AddInput struct {
	ID           string `json:"id"`
	Name         string `json:"name" validate:"required"`
	IsSupervisor bool   `json:"isSupervisor"`
}

type service struct {
	repo *Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds the roster service.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

func (s *service) List(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	return users, nil
}

func (s *service) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err == gorm.ErrRecordNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	} else if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}

func (s *service) Add(ctx context.Context, input AddInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user name required")
	}

	id := strings.TrimSpace(input.ID)
	if id != "" {
		user := &models.User{ID: id, Name: name, IsSupervisor: input.IsSupervisor}
		if err := s.repo.Insert(ctx, user); err != nil {
			if db.IsUniqueViolation(err) {
				return nil, pkgerrors.New(pkgerrors.CodeDuplicateID, "user id already exists").WithDetails(id)
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert user")
		}
		s.logCreated(ctx, user)
		return user, nil
	}

	for attempt := 0; attempt < idMintAttempts; attempt++ {
		user := &models.User{ID: s.mintID(attempt), Name: name, IsSupervisor: input.IsSupervisor}
		err := s.repo.Insert(ctx, user)
		if err == nil {
			s.logCreated(ctx, user)
			return user, nil
		}
		if !db.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert user")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "could not mint a unique user id")
}

func (s *service) Remove(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	existed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
	}
	if !existed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	ctx = s.logg.WithOperatorID(ctx, id)
	s.logg.Info(ctx, "user removed")
	return nil
}

// mintID derives a six digit credential suffix from the clock. Retries nudge
// the suffix so a same-millisecond collision resolves locally.
func (s *service) mintID(attempt int) string {
	suffix := (s.now().UnixMilli() + int64(attempt)) % 1_000_000
	return fmt.Sprintf("%s%06d", generatedIDPrefix, suffix)
}

func (s *service) logCreated(ctx context.Context, user *models.User) {
	ctx = s.logg.WithOperatorID(ctx, user.ID)
	ctx = s.logg.WithField(ctx, "is_supervisor", user.IsSupervisor)
	s.logg.Info(ctx, "user added")
}
