package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/rs/xid"
	"github.com/smorgan/blog-api/internal/apperror"
)

// ChatConfig configures the chat-completion proxy.
type ChatConfig struct {
	// ModelURL is the prediction endpoint of the upstream model, e.g.
	// "https://api.replicate.com/v1/models/meta/meta-llama-3-70b-instruct/predictions".
	ModelURL string
	Token    string
}

// ChatClient forwards chat payloads to the upstream prediction API and
// hands back the stream URL the client should read the completion from.
// The payload passes through opaque: prompt shape is a contract between
// the frontend and the model, not something this server interprets.
type ChatClient struct {
	cfg    ChatConfig
	http   *http.Client
	logger *slog.Logger
}

// NewChatClient creates a ChatClient.
func NewChatClient(cfg ChatConfig, logger *slog.Logger) *ChatClient {
	return &ChatClient{
		cfg:    cfg,
		http:   newHTTPClient(),
		logger: logger,
	}
}

// Complete submits the raw request payload and returns the stream URL from
// the created prediction.
func (c *ChatClient) Complete(ctx context.Context, payload json.RawMessage) (string, error) {
	if len(payload) == 0 || !json.Valid(payload) {
		return "", apperror.ValidationFailed("body", "request body must be valid JSON")
	}

	relayID := xid.New().String()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ModelURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("relay: building chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Idempotency-Key", relayID)

	c.logger.Info("proxying chat completion", slog.String("relayID", relayID))

	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("chat upstream request failed",
			slog.String("relayID", relayID),
			slog.String("error", err.Error()),
		)
		return "", apperror.Unavailable("chat", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		raw, _ := io.ReadAll(res.Body)
		c.logger.Error("chat upstream returned an error status",
			slog.String("relayID", relayID),
			slog.Int("status", res.StatusCode),
			slog.String("body", string(raw)),
		)
		return "", apperror.Unavailable("chat",
			fmt.Errorf("status %d", res.StatusCode))
	}

	// The prediction response nests the stream endpoint under urls.stream.
	var prediction struct {
		URLs struct {
			Stream string `json:"stream"`
		} `json:"urls"`
	}
	if err := json.NewDecoder(res.Body).Decode(&prediction); err != nil {
		return "", apperror.Unavailable("chat", fmt.Errorf("decoding response: %w", err))
	}
	if prediction.URLs.Stream == "" {
		return "", apperror.Unavailable("chat", fmt.Errorf("prediction has no stream url"))
	}

	c.logger.Info("chat completion created", slog.String("relayID", relayID))
	return prediction.URLs.Stream, nil
}
