// Package notifier delivers alert text to messaging endpoints.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Sender delivers one text message. Implementations make a single attempt.
type Sender interface {
	Send(ctx context.Context, text string) error
}

const lineBaseURL = "https://api.line.me"

func newClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// LINENotifier pushes messages to one user via the LINE Messaging API.
type LINENotifier struct {
	AccessToken string
	UserID      string
	BaseURL     string
	Client      *http.Client
}

// NewLINENotifier creates a notifier with optional proxy support.
func NewLINENotifier(accessToken, userID, proxyURL string) *LINENotifier {
	return &LINENotifier{
		AccessToken: accessToken,
		UserID:      userID,
		BaseURL:     lineBaseURL,
		Client:      newClient(proxyURL, 30*time.Second),
	}
}

type lineMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type linePush struct {
	To       string        `json:"to"`
	Messages []lineMessage `json:"messages"`
}

// Send pushes text to the configured user.
func (l *LINENotifier) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(linePush{To: l.UserID, Messages: []lineMessage{{Type: "text", Text: text}}})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.BaseURL+"/v2/bot/message/push", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.AccessToken)

	resp, err := l.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("LINE API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
