package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/parttrack/parttrack-backend/internal/ledger"
	"github.com/parttrack/parttrack-backend/internal/settings"
	"github.com/parttrack/parttrack-backend/pkg/config"
	"github.com/parttrack/parttrack-backend/pkg/db/models"
	pkgerrors "github.com/parttrack/parttrack-backend/pkg/errors"
	"github.com/parttrack/parttrack-backend/pkg/logger"
	"github.com/parttrack/parttrack-backend/pkg/telegram"
)

// Service builds and delivers low-stock alerts.
type Service interface {
	LowStockReport(ctx context.Context) (*Report, error)
	SendLowStockAlert(ctx context.Context) (*SendResult, error)
	DetectChatID(ctx context.Context) (*telegram.DetectedChat, error)
}

// Report is the renderable low-stock summary.
type Report struct {
	Parts       []models.Part `json:"parts"`
	Message     string        `json:"message"`
	PhoneNumber string        `json:"phoneNumber,omitempty"`
}

// SendResult describes one alert delivery attempt.
type SendResult struct {
	ChatID    string `json:"chatId,omitempty"`
	PartCount int    `json:"partCount"`
	Skipped   bool   `json:"skipped"`
}

// clientFactory builds a Telegram client for the merged runtime settings.
type clientFactory func(cfg config.NotifyConfig) telegram.Client

type service struct {
	stock     ledger.Service
	settings  settings.Service
	cfg       config.NotifyConfig
	newClient clientFactory
	logg      *logger.Logger
}

// NewService wires the notifier. Telegram credentials stored in settings
// override the environment values.
func NewService(stock ledger.Service, sett settings.Service, cfg config.NotifyConfig, logg *logger.Logger) (Service, error) {
	if stock == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if sett == nil {
		return nil, fmt.Errorf("settings service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		stock:    stock,
		settings: sett,
		cfg:      cfg,
		newClient: func(merged config.NotifyConfig) telegram.Client {
			return telegram.NewClient(merged)
		},
		logg: logg,
	}, nil
}

func (s *service) LowStockReport(ctx context.Context) (*Report, error) {
	parts, err := s.stock.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	merged, err := s.mergedConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &Report{
		Parts:       parts,
		Message:     renderMessage(parts),
		PhoneNumber: merged.PhoneNumber,
	}, nil
}

func (s *service) SendLowStockAlert(ctx context.Context) (*SendResult, error) {
	parts, err := s.stock.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return &SendResult{Skipped: true}, nil
	}

	merged, err := s.mergedConfig(ctx)
	if err != nil {
		return nil, err
	}
	if merged.TelegramBotToken == "" || merged.TelegramChatID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "telegram bot token and chat id must be configured")
	}

	client := s.newClient(merged)
	if err := client.SendMessage(ctx, merged.TelegramChatID, renderMessage(parts)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send telegram alert")
	}

	ctx = s.logg.WithField(ctx, "part_count", len(parts))
	s.logg.Info(ctx, "low stock alert sent")
	return &SendResult{ChatID: merged.TelegramChatID, PartCount: len(parts)}, nil
}

func (s *service) DetectChatID(ctx context.Context) (*telegram.DetectedChat, error) {
	merged, err := s.mergedConfig(ctx)
	if err != nil {
		return nil, err
	}
	if merged.TelegramBotToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "telegram bot token must be configured")
	}

	detected, err := s.newClient(merged).DetectChatID(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detect telegram chat")
	}
	return detected, nil
}

// mergedConfig layers the stored settings over the environment defaults.
func (s *service) mergedConfig(ctx context.Context) (config.NotifyConfig, error) {
	merged := s.cfg
	stored, err := s.settings.Get(ctx)
	if err != nil {
		return merged, err
	}
	if stored.PhoneNumber != "" {
		merged.PhoneNumber = stored.PhoneNumber
	}
	if stored.TelegramBotToken != "" {
		merged.TelegramBotToken = stored.TelegramBotToken
	}
	if stored.TelegramChatID != "" {
		merged.TelegramChatID = stored.TelegramChatID
	}
	return merged, nil
}

func renderMessage(parts []models.Part) string {
	if len(parts) == 0 {
		return "All stock levels are healthy."
	}
	var b strings.Builder
	b.WriteString("Low stock alert:\n")
	for _, part := range parts {
		fmt.Fprintf(&b, "- %s (%s): %d left at %s\n", part.ID, part.Name, part.Quantity, part.Location.String())
	}
	return strings.TrimRight(b.String(), "\n")
}
