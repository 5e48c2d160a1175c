// Package delivery sends transactional email through a Resend-compatible
// HTTP API. When no provider credential is configured it falls back to a
// deterministic mock: a fixed artificial delay followed by a simulated
// success, so callers see realistic latency without a real send.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sweetpotato0/dealsense/errors"
	"github.com/sweetpotato0/dealsense/pkg/logging"
)

const defaultAPIURL = "https://api.resend.com/emails"

// MockDelay is the artificial latency of the simulated send.
const MockDelay = 1 * time.Second

// MockMessage is the literal success message of the mock path.
const MockMessage = "Email queued successfully (Mock - No API Key)"

// Config holds delivery configuration.
type Config struct {
	// APIKey authenticates against the provider. Empty selects the mock path.
	APIKey string

	// From is the sender identity.
	From string

	// BaseURL overrides the provider endpoint; used by tests.
	BaseURL string
}

// Request is one outbound email.
type Request struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Result is the uniform success shape for both delivery paths. ID is set
// only when a real provider accepted the message.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// Sender delivers email via the provider or the mock fallback.
type Sender struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger

	// mockDelay is MockDelay in production; tests shorten it.
	mockDelay time.Duration
}

// New creates a Sender.
func New(cfg Config) *Sender {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultAPIURL
	}
	return &Sender{
		cfg:       cfg,
		client:    &http.Client{},
		logger:    logging.WithComponent("delivery"),
		mockDelay: MockDelay,
	}
}

// Send validates the request, then either calls the provider or simulates
// a send. Validation failures never reach the network.
func (s *Sender) Send(ctx context.Context, req *Request) (*Result, error) {
	if req == nil || req.To == "" || req.Subject == "" || req.Body == "" {
		return nil, errors.Validation("Missing required email fields.")
	}

	if s.cfg.APIKey == "" {
		return s.sendMock(ctx, req)
	}
	return s.sendProvider(ctx, req)
}

func (s *Sender) sendMock(ctx context.Context, req *Request) (*Result, error) {
	s.logger.Info("simulating email send", "to", req.To, "subject", req.Subject)

	select {
	case <-time.After(s.mockDelay):
	case <-ctx.Done():
		return nil, errors.Backend("mock delivery interrupted", ctx.Err())
	}

	return &Result{Success: true, Message: MockMessage}, nil
}

// providerRequest is the Resend wire format. The plain-text alternative is
// derived from the HTML body.
type providerRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
}

type providerResponse struct {
	ID string `json:"id"`
}

func (s *Sender) sendProvider(ctx context.Context, req *Request) (*Result, error) {
	payload := providerRequest{
		From:    s.cfg.From,
		To:      []string{req.To},
		Subject: req.Subject,
		HTML:    req.Body,
		Text:    HTMLToText(req.Body),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Backend("failed to marshal provider request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Backend("failed to create provider request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	httpResp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, errors.Backend("email provider request failed", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, errors.Backend("failed to read provider response", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, errors.Backend("email provider error", fmt.Errorf("status %d: %s", httpResp.StatusCode, respBody))
	}

	var resp providerResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, errors.Backend("failed to unmarshal provider response", err)
	}

	s.logger.Info("email sent", "to", req.To, "id", resp.ID)

	return &Result{Success: true, Message: "Email sent successfully", ID: resp.ID}, nil
}

// HTMLToText derives a plain-text alternative from an HTML body. A body
// that fails to parse is returned unchanged.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
