package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/natashamaes/venue-concierge/pkg/logging"
)

// Sender delivers a text message to a single phone number.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// ClickSendClient sends SMS through the ClickSend REST API.
type ClickSendClient struct {
	username   string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClickSendClient creates a ClickSend sender. Returns nil when either
// credential is missing so texting degrades to disabled.
func NewClickSendClient(username, apiKey string, logger *logging.Logger) *ClickSendClient {
	if username == "" || apiKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ClickSendClient{
		username:   username,
		apiKey:     apiKey,
		baseURL:    "https://rest.clicksend.com",
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// WithBaseURL overrides the ClickSend API base URL (for testing).
func (c *ClickSendClient) WithBaseURL(baseURL string) *ClickSendClient {
	if baseURL != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

type clickSendMessage struct {
	Body   string `json:"body"`
	To     string `json:"to"`
	From   string `json:"from"`
	Source string `json:"source"`
}

type clickSendRequest struct {
	Messages []clickSendMessage `json:"messages"`
}

// Send delivers one message to one recipient.
func (c *ClickSendClient) Send(ctx context.Context, to, body string) error {
	payload, err := json.Marshal(clickSendRequest{
		Messages: []clickSendMessage{{Body: body, To: to, Source: "sdk"}},
	})
	if err != nil {
		return fmt.Errorf("sms: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3/sms/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("sms: build request: %w", err)
	}
	req.SetBasicAuth(c.username, c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sms: clicksend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sms: clicksend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	c.logger.Info("sms sent via clicksend", "to", to, "status", resp.StatusCode)
	return nil
}
