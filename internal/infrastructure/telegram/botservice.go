package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	sharedConfig "tgnotify/internal/shared/config"
)

const defaultAPIBaseURL = "https://api.telegram.org"

// BotService provides the Telegram Bot API operations used for notifications
type BotService struct {
	config     sharedConfig.TelegramConfig
	httpClient *http.Client
	baseURL    string
}

// NewBotService creates a new Telegram bot service
func NewBotService(config sharedConfig.TelegramConfig) *BotService {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	apiBase := strings.TrimRight(config.APIBaseURL, "/")
	if apiBase == "" {
		apiBase = defaultAPIBaseURL
	}

	return &BotService{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: fmt.Sprintf("%s/bot%s", apiBase, config.BotToken),
	}
}

// DefaultChatID returns the configured destination chat
func (s *BotService) DefaultChatID() int64 {
	return s.config.ChatID
}

// GetMe returns the bot's own account. Used as a startup credential check.
func (s *BotService) GetMe(ctx context.Context) (*User, error) {
	var me User
	if err := s.call(ctx, "getMe", nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// SendMessage sends an HTML formatted message to a chat
func (s *BotService) SendMessage(ctx context.Context, chatID int64, text string) (*Message, error) {
	body := map[string]any{
		"chat_id":                  chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}

	var msg Message
	if err := s.call(ctx, "sendMessage", body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SendLongMessage splits text to fit Telegram's message limit and sends the
// parts in order. It stops at the first failed part and returns how many parts
// were delivered before it.
func (s *BotService) SendLongMessage(ctx context.Context, chatID int64, text string) (int, error) {
	parts := splitMessage(text, maxMessageLength)
	for i, part := range parts {
		if _, err := s.SendMessage(ctx, chatID, part); err != nil {
			return i, fmt.Errorf("failed to send part %d/%d: %w", i+1, len(parts), err)
		}
	}
	return len(parts), nil
}

// User represents a Telegram user
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`
}

// Chat represents a Telegram chat
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// Message represents a sent Telegram message
type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      *Chat  `json:"chat"`
	Date      int64  `json:"date"`
	Text      string `json:"text,omitempty"`
}

// apiResponse is the envelope of every Bot API reply
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after,omitempty"`
	} `json:"parameters,omitempty"`
}

func (s *BotService) call(ctx context.Context, method string, body map[string]any, out any) error {
	if s.config.BotToken == "" {
		return ErrNotConfigured
	}

	url := fmt.Sprintf("%s/%s", s.baseURL, method)

	var payload *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = bytes.NewBuffer(jsonBody)
	} else {
		payload = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, payload)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if !result.OK {
		apiErr := &APIError{
			ErrorCode:   result.ErrorCode,
			Description: result.Description,
		}
		if apiErr.ErrorCode == 0 {
			apiErr.ErrorCode = resp.StatusCode
		}
		if result.Parameters != nil {
			apiErr.RetryAfter = result.Parameters.RetryAfter
		}
		return apiErr
	}

	if out != nil && len(result.Result) > 0 {
		if err := json.Unmarshal(result.Result, out); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}

	return nil
}
