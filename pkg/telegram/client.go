package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/parttrack/parttrack-backend/pkg/config"
)

// Client exposes the Telegram Bot API operations used for low-stock alerts.
type Client interface {
	SendMessage(ctx context.Context, chatID, text string) error
	DetectChatID(ctx context.Context) (*DetectedChat, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	botToken   string
}

// DetectedChat is the chat identity inferred from the bot's most recent update.
type DetectedChat struct {
	ChatID string `json:"chatId"`
	User   string `json:"user"`
}

// NewClient builds a Telegram bot client using the provided configuration values.
func NewClient(cfg config.NotifyConfig) *APIClient {
	base := strings.TrimSuffix(cfg.TelegramBaseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{
		httpClient: restyClient,
		botToken:   cfg.TelegramBotToken,
	}
}

type apiEnvelope struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

type updateMessage struct {
	Chat struct {
		ID int64 `json:"id"`
	} `json:"chat"`
	From struct {
		FirstName string `json:"first_name"`
		Username  string `json:"username"`
	} `json:"from"`
}

type update struct {
	Message       *updateMessage `json:"message"`
	EditedMessage *updateMessage `json:"edited_message"`
}

type updatesResponse struct {
	OK     bool     `json:"ok"`
	Result []update `json:"result"`
}

// SendMessage posts a plain-text message to the given chat.
func (c *APIClient) SendMessage(ctx context.Context, chatID, text string) error {
	if c.botToken == "" {
		return fmt.Errorf("telegram bot token is not configured")
	}
	if chatID == "" {
		return fmt.Errorf("telegram chat id is required")
	}

	var result apiEnvelope
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]any{"chat_id": chatID, "text": text}).
		SetResult(&result).
		SetError(&result).
		Post(fmt.Sprintf("/bot%s/sendMessage", c.botToken))
	if err != nil {
		return fmt.Errorf("telegram sendMessage: %w", err)
	}
	if resp.IsError() || !result.OK {
		return fmt.Errorf("telegram sendMessage failed: %s", result.Description)
	}
	return nil
}

// DetectChatID inspects the bot's recent updates and returns the chat the last
// message came from. The operator must have messaged the bot at least once.
func (c *APIClient) DetectChatID(ctx context.Context) (*DetectedChat, error) {
	if c.botToken == "" {
		return nil, fmt.Errorf("telegram bot token is not configured")
	}

	var result updatesResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		Get(fmt.Sprintf("/bot%s/getUpdates", c.botToken))
	if err != nil {
		return nil, fmt.Errorf("telegram getUpdates: %w", err)
	}
	if resp.IsError() || !result.OK || len(result.Result) == 0 {
		return nil, fmt.Errorf("no recent messages found; send a message to the bot first")
	}

	last := result.Result[len(result.Result)-1]
	msg := last.Message
	if msg == nil {
		msg = last.EditedMessage
	}
	if msg == nil {
		return nil, fmt.Errorf("no recent messages found; send a message to the bot first")
	}

	user := msg.From.FirstName
	if user == "" {
		user = msg.From.Username
	}
	if user == "" {
		user = "User"
	}

	return &DetectedChat{
		ChatID: fmt.Sprintf("%d", msg.Chat.ID),
		User:   user,
	}, nil
}
