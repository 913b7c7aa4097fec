package settings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/parttrack/parttrack-backend/pkg/db/models"
	pkgerrors "github.com/parttrack/parttrack-backend/pkg/errors"
	"github.com/parttrack/parttrack-backend/pkg/logger"
)

// Service manages the single-row system settings.
type Service interface {
	Get(ctx context.Context) (*models.Setting, error)
	Update(ctx context.Context, input UpdateInput) (*models.Setting, error)
	StatsStartDate(ctx context.Context) (*time.Time, error)
	ResetStats(ctx context.Context) (time.Time, error)
}

// UpdateInput carries a partial settings edit. Nil fields are left untouched.
type UpdateInput struct {
	PhoneNumber      *string `json:"phoneNumber"`
	TelegramBotToken *string `json:"telegramBotToken"`
	TelegramChatID   *string `json:"telegramChatId"`
}

type service struct {
	repo *Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds the settings service.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

func (s *service) Get(ctx context.Context) (*models.Setting, error) {
	setting, err := s.repo.Get(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load settings")
	}
	return setting, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.Setting, error) {
	setting, err := s.repo.Get(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load settings")
	}

	if input.PhoneNumber != nil {
		setting.PhoneNumber = strings.TrimSpace(*input.PhoneNumber)
	}
	if input.TelegramBotToken != nil {
		setting.TelegramBotToken = strings.TrimSpace(*input.TelegramBotToken)
	}
	if input.TelegramChatID != nil {
		setting.TelegramChatID = strings.TrimSpace(*input.TelegramChatID)
	}

	if err := s.repo.Save(ctx, setting); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save settings")
	}
	s.logg.Info(ctx, "settings updated")
	return setting, nil
}

// StatsStartDate returns the consumption counter cutoff, nil when stats have
// never been reset.
func (s *service) StatsStartDate(ctx context.Context) (*time.Time, error) {
	setting, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return setting.StatsStartDate, nil
}

// ResetStats advances the cutoff to now. Calling it twice simply moves the
// cutoff forward again; no audit history is touched.
func (s *service) ResetStats(ctx context.Context) (time.Time, error) {
	setting, err := s.repo.Get(ctx)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load settings")
	}

	cutoff := s.now().UTC()
	setting.StatsStartDate = &cutoff
	if err := s.repo.Save(ctx, setting); err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save settings")
	}

	ctx = s.logg.WithField(ctx, "stats_start_date", cutoff)
	s.logg.Info(ctx, "consumption stats reset")
	return cutoff, nil
}
