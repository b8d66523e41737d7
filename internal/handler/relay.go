package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/smorgan/blog-api/internal/relay"
)

// RelayHandler serves the outbound-integration endpoints: contact creation,
// contact-form delivery, and the chat-completion proxy. All three sit behind
// the auth middleware because they spend upstream API quota.
type RelayHandler struct {
	loops  *relay.LoopsClient
	chat   *relay.ChatClient
	logger *slog.Logger
}

// NewRelayHandler creates a RelayHandler.
func NewRelayHandler(loops *relay.LoopsClient, chat *relay.ChatClient, logger *slog.Logger) *RelayHandler {
	return &RelayHandler{loops: loops, chat: chat, logger: logger}
}

// HandleCreateContact relays a contact record to the email platform.
//
// HTTP: POST /contacts (auth required)
func (h *RelayHandler) HandleCreateContact(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		h.logger.Warn("invalid contact JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	if _, err := h.loops.CreateContact(r.Context(), fields); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "contact created successfully"})
}

// HandleSendForm delivers a contact-form submission as email.
//
// HTTP: POST /send_form (auth required)
func (h *RelayHandler) HandleSendForm(w http.ResponseWriter, r *http.Request) {
	var form relay.ContactForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		h.logger.Warn("invalid contact form JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	if err := h.loops.SendForm(r.Context(), form); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "form sent successfully"})
}

// HandleChat proxies a chat payload to the model API and returns the URL
// the client streams the completion from.
//
// HTTP: POST /chat (auth required) → {"stream_url": "..."}
func (h *RelayHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "unreadable request body"})
		return
	}

	streamURL, err := h.chat.Complete(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"stream_url": streamURL})
}
