// Package relay holds the clients for outbound HTTP integrations: the
// Loops transactional-email API (contact form) and the chat-completion
// prediction API.
//
// Both clients share one http.Client with a timeout, and both stamp each
// outbound call with a fresh xid sent as Idempotency-Key and logged, so a
// retried or abandoned request can be traced end to end. Upstream failures
// surface as apperror.ErrUnavailable: the caller's input wasn't the
// problem, the upstream was.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"
	"github.com/smorgan/blog-api/internal/apperror"
)

const defaultTimeout = 15 * time.Second

// newHTTPClient is shared by both relay clients.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

// LoopsConfig configures the contact-form relay.
type LoopsConfig struct {
	BaseURL         string // e.g. "https://app.loops.so/api/v1"
	APIKey          string
	TransactionalID string // template id for contact-form emails
	Inbox           string // address the contact-form email is delivered to
}

// LoopsClient relays contact submissions to the Loops API.
type LoopsClient struct {
	cfg    LoopsConfig
	http   *http.Client
	logger *slog.Logger
}

// NewLoopsClient creates a LoopsClient.
func NewLoopsClient(cfg LoopsConfig, logger *slog.Logger) *LoopsClient {
	return &LoopsClient{
		cfg:    cfg,
		http:   newHTTPClient(),
		logger: logger,
	}
}

// ContactForm is a website contact-form submission.
type ContactForm struct {
	First   string `json:"first"`
	Last    string `json:"last"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Validate checks that the submission is complete enough to relay.
func (f ContactForm) Validate() error {
	if f.Email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}
	if f.Message == "" {
		return apperror.ValidationFailed("message", "message is required")
	}
	return nil
}

// CreateContact relays an arbitrary contact payload to the contacts/create
// endpoint and returns the upstream response body.
func (c *LoopsClient) CreateContact(ctx context.Context, fields map[string]any) (map[string]any, error) {
	return c.post(ctx, c.cfg.BaseURL+"/contacts/create", fields)
}

// SendForm delivers a contact-form submission as a transactional email to
// the configured inbox.
func (c *LoopsClient) SendForm(ctx context.Context, form ContactForm) error {
	if err := form.Validate(); err != nil {
		return err
	}

	payload := map[string]any{
		"transactionalId": c.cfg.TransactionalID,
		"email":           c.cfg.Inbox,
		"dataVariables": map[string]any{
			"first":   form.First,
			"last":    form.Last,
			"email":   form.Email,
			"message": form.Message,
		},
	}

	_, err := c.post(ctx, c.cfg.BaseURL+"/transactional", payload)
	return err
}

func (c *LoopsClient) post(ctx context.Context, url string, payload any) (map[string]any, error) {
	relayID := xid.New().String()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("relay: encoding loops payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("relay: building loops request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Idempotency-Key", relayID)

	c.logger.Info("relaying to loops",
		slog.String("relayID", relayID),
		slog.String("url", url),
	)

	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("loops request failed",
			slog.String("relayID", relayID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Unavailable("loops", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		raw, _ := io.ReadAll(res.Body)
		c.logger.Error("loops returned an error status",
			slog.String("relayID", relayID),
			slog.Int("status", res.StatusCode),
			slog.String("body", string(raw)),
		)
		return nil, apperror.Unavailable("loops",
			fmt.Errorf("status %d", res.StatusCode))
	}

	var decoded map[string]any
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, apperror.Unavailable("loops", fmt.Errorf("decoding response: %w", err))
	}

	c.logger.Info("loops relay succeeded", slog.String("relayID", relayID))
	return decoded, nil
}
