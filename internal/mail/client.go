// Package mail sends transactional email through a Postmark-compatible
// JSON API: the finished report to the requesting user and the manual-review
// and quarter-issue notifications to the admin inbox.
package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/qhuube/vatreport/internal/report"
)

const defaultAPIURL = "https://api.postmarkapp.com/email"

// Message is one outbound email.
type Message struct {
	To          string
	Subject     string
	HTMLBody    string
	TextBody    string
	Attachments []report.Artifact
}

// Sender delivers messages. The HTTP client implementation is the production
// path; tests and no-op deployments substitute their own.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Client is a Postmark API client.
type Client struct {
	apiURL string
	token  string
	from   string
	http   *http.Client
}

// NewClient creates a client sending from the given address. An empty apiURL
// selects the public Postmark endpoint.
func NewClient(apiURL, token, from string) *Client {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Client{
		apiURL: apiURL,
		token:  token,
		from:   from,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

type postmarkAttachment struct {
	Name        string `json:"Name"`
	Content     string `json:"Content"`
	ContentType string `json:"ContentType"`
}

type postmarkRequest struct {
	From        string               `json:"From"`
	To          string               `json:"To"`
	Subject     string               `json:"Subject"`
	HTMLBody    string               `json:"HtmlBody,omitempty"`
	TextBody    string               `json:"TextBody,omitempty"`
	Attachments []postmarkAttachment `json:"Attachments,omitempty"`
}

type postmarkResponse struct {
	ErrorCode int    `json:"ErrorCode"`
	Message   string `json:"Message"`
	MessageID string `json:"MessageID"`
}

// Send delivers one message, with attachments base64-encoded the way the
// Postmark API expects.
func (c *Client) Send(ctx context.Context, msg Message) error {
	payload := postmarkRequest{
		From:     c.from,
		To:       msg.To,
		Subject:  msg.Subject,
		HTMLBody: msg.HTMLBody,
		TextBody: msg.TextBody,
	}
	for _, a := range msg.Attachments {
		payload.Attachments = append(payload.Attachments, postmarkAttachment{
			Name:        a.Name,
			Content:     base64.StdEncoding.EncodeToString(a.Data),
			ContentType: a.ContentType,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email API returned status %d: %s", resp.StatusCode, respBody)
	}

	var parsed postmarkResponse
	if err := json.Unmarshal(respBody, &parsed); err == nil && parsed.ErrorCode != 0 {
		return fmt.Errorf("email API error %d: %s", parsed.ErrorCode, parsed.Message)
	}

	slog.Info("email sent", "to", msg.To, "subject", msg.Subject, "attachments", len(msg.Attachments))
	return nil
}

// Disabled is a Sender for deployments without a mail token. Every send is
// logged and dropped.
type Disabled struct{}

func (Disabled) Send(_ context.Context, msg Message) error {
	slog.Warn("email delivery disabled, dropping message", "to", msg.To, "subject", msg.Subject)
	return nil
}
