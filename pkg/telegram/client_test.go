package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/parttrack/parttrack-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.NotifyConfig{
		TelegramBotToken: "test-token",
		TelegramBaseURL:  server.URL,
	})
}

func TestSendMessage(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	err := client.SendMessage(context.Background(), "42", "low stock")
	require.NoError(t, err)
	assert.Equal(t, "/bottest-token/sendMessage", gotPath)
	assert.Equal(t, "42", gotBody["chat_id"])
	assert.Equal(t, "low stock", gotBody["text"])
}

func TestSendMessage_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	})

	err := client.SendMessage(context.Background(), "42", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestSendMessage_RequiresConfig(t *testing.T) {
	client := NewClient(config.NotifyConfig{TelegramBaseURL: "https://example.invalid"})
	assert.Error(t, client.SendMessage(context.Background(), "42", "hi"))

	client = NewClient(config.NotifyConfig{TelegramBotToken: "t", TelegramBaseURL: "https://example.invalid"})
	assert.Error(t, client.SendMessage(context.Background(), "", "hi"))
}

func TestDetectChatID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/getUpdates", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":[
			{"message":{"chat":{"id":1},"from":{"first_name":"Old"}}},
			{"message":{"chat":{"id":987654},"from":{"first_name":"Nagendra"}}}
		]}`))
	})

	chat, err := client.DetectChatID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "987654", chat.ChatID)
	assert.Equal(t, "Nagendra", chat.User)
}

func TestDetectChatID_NoUpdates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
	})

	_, err := client.DetectChatID(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recent messages")
}
