package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultBaseURL = "https://api.telegram.org"

// Fields carries the submission values rendered into the notification.
// Optional fields left empty are omitted from the message.
type Fields struct {
	Name         string
	Email        string
	CompanyTitle string
	Challenge    string
	Message      string
}

// TelegramConfig holds Telegram Bot API configuration
type TelegramConfig struct {
	Token  string
	ChatID string
}

// Telegram relays a submission summary to a Telegram chat. Delivery is
// attempted at most once; the caller decides what a failure means.
type Telegram struct {
	config     TelegramConfig
	baseURL    string
	httpClient *http.Client
}

// NewTelegram creates a new Telegram notifier
func NewTelegram(config TelegramConfig) *Telegram {
	return &Telegram{
		config:  config,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enabled reports whether delivery credentials are configured.
func (t *Telegram) Enabled() bool {
	return t.config.Token != "" && t.config.ChatID != ""
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Send delivers one notification. Missing credentials skip delivery without
// any network I/O; that is a configuration choice, not an error.
func (t *Telegram) Send(ctx context.Context, fields Fields) error {
	if !t.Enabled() {
		log.Warn().Msg("Telegram notification skipped: TELEGRAM_TOKEN or TELEGRAM_CHAT_ID is not set")
		return nil
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:    t.config.ChatID,
		Text:      formatMessage(fields),
		ParseMode: "Markdown",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal Telegram request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.config.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	return nil
}

// formatMessage builds the Markdown summary from present fields only.
func formatMessage(fields Fields) string {
	lines := []string{
		"📬 *New contact form submission*",
		"",
		"👤 *Name:* " + fields.Name,
		"📧 *Email:* " + fields.Email,
	}
	if fields.CompanyTitle != "" {
		lines = append(lines, "🏢 *Company / Title:* "+fields.CompanyTitle)
	}
	if fields.Challenge != "" {
		lines = append(lines, "⚡ *Challenge:* "+fields.Challenge)
	}
	lines = append(lines, "💬 *Message:*\n"+fields.Message)

	return strings.Join(lines, "\n")
}
