package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pfrederiksen/tm-roles/internal/logger"
)

const (
	DefaultAPIBaseURL = "https://api.telegram.org/bot"
	timeout           = 10 * time.Second
)

// TelegramNotifier posts rosters to a Telegram chat
type TelegramNotifier struct {
	botToken   string
	chatID     string
	baseURL    string
	httpClient *http.Client
}

// TelegramOption configures a TelegramNotifier
type TelegramOption func(*TelegramNotifier)

// WithBaseURL points the client at another Bot API endpoint
func WithBaseURL(url string) TelegramOption {
	return func(n *TelegramNotifier) {
		n.baseURL = url
	}
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) TelegramOption {
	return func(n *TelegramNotifier) {
		n.httpClient = c
	}
}

// NewTelegram creates a Telegram notifier
func NewTelegram(botToken, chatID string, opts ...TelegramOption) (*TelegramNotifier, error) {
	if botToken == "" {
		return nil, errors.New("bot token is required")
	}
	if chatID == "" {
		return nil, errors.New("chat ID is required")
	}

	n := &TelegramNotifier{
		botToken:   botToken,
		chatID:     chatID,
		baseURL:    DefaultAPIBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Notify sends the formatted roster
func (n *TelegramNotifier) Notify(ctx context.Context, r Roster) error {
	if err := n.SendMessage(ctx, FormatRoster(r)); err != nil {
		return err
	}
	logger.Info("Roster sent to Telegram", logger.Fields{
		"meeting_date": r.MeetingDate.Format("2006-01-02"),
		"roles":        len(r.Results),
	})
	return nil
}

// SendMessage sends an HTML message to the configured chat
func (n *TelegramNotifier) SendMessage(ctx context.Context, text string) error {
	if text == "" {
		return errors.New("message text is required")
	}

	payload := map[string]interface{}{
		"chat_id":                  n.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	url := fmt.Sprintf("%s%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram API error: %s", result.Description)
	}
	return nil
}
