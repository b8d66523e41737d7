package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smorgan/blog-api/internal/apperror"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// capturedRequest records what an upstream stub received.
type capturedRequest struct {
	path    string
	headers http.Header
	body    []byte
}

// newLoopsStub stands in for the Loops API. It records each request and
// answers with the given status and a small JSON body.
func newLoopsStub(t *testing.T, status int) (*httptest.Server, *[]capturedRequest) {
	t.Helper()

	var captured []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured = append(captured, capturedRequest{
			path:    r.URL.Path,
			headers: r.Header.Clone(),
			body:    body,
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(`{"success": true}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func newTestLoopsClient(baseURL string) *LoopsClient {
	return NewLoopsClient(LoopsConfig{
		BaseURL:         baseURL,
		APIKey:          "test-api-key",
		TransactionalID: "tx-123",
		Inbox:           "inbox@example.com",
	}, discardLogger())
}

// =========================================================================
// CREATE CONTACT
// =========================================================================

func TestCreateContact(t *testing.T) {
	stub, captured := newLoopsStub(t, http.StatusOK)
	client := newTestLoopsClient(stub.URL)

	resp, err := client.CreateContact(context.Background(), map[string]any{
		"email":     "ada@example.com",
		"firstName": "Ada",
	})
	if err != nil {
		t.Fatalf("CreateContact() error = %v", err)
	}
	if resp["success"] != true {
		t.Errorf("CreateContact() response = %v", resp)
	}

	if len(*captured) != 1 {
		t.Fatalf("upstream received %d requests, want 1", len(*captured))
	}
	req := (*captured)[0]
	if req.path != "/contacts/create" {
		t.Errorf("upstream path = %q, want /contacts/create", req.path)
	}
	if got := req.headers.Get("Authorization"); got != "Bearer test-api-key" {
		t.Errorf("Authorization = %q", got)
	}
	if req.headers.Get("Idempotency-Key") == "" {
		t.Error("request carried no Idempotency-Key")
	}

	var fields map[string]any
	if err := json.Unmarshal(req.body, &fields); err != nil {
		t.Fatalf("upstream body is not JSON: %v", err)
	}
	if fields["email"] != "ada@example.com" {
		t.Errorf("relayed fields = %v", fields)
	}
}

func TestCreateContact_UpstreamError(t *testing.T) {
	stub, _ := newLoopsStub(t, http.StatusInternalServerError)
	client := newTestLoopsClient(stub.URL)

	_, err := client.CreateContact(context.Background(), map[string]any{"email": "a@b.c"})
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Errorf("CreateContact() error = %v, want ErrUnavailable", err)
	}
}

func TestCreateContact_UpstreamUnreachable(t *testing.T) {
	// A closed server: connections are refused outright.
	stub, _ := newLoopsStub(t, http.StatusOK)
	url := stub.URL
	stub.Close()

	client := newTestLoopsClient(url)
	_, err := client.CreateContact(context.Background(), map[string]any{"email": "a@b.c"})
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Errorf("CreateContact() error = %v, want ErrUnavailable", err)
	}
}

// =========================================================================
// SEND FORM
// =========================================================================

func TestSendForm(t *testing.T) {
	stub, captured := newLoopsStub(t, http.StatusOK)
	client := newTestLoopsClient(stub.URL)

	err := client.SendForm(context.Background(), ContactForm{
		First:   "Ada",
		Last:    "Lovelace",
		Email:   "ada@example.com",
		Message: "hello",
	})
	if err != nil {
		t.Fatalf("SendForm() error = %v", err)
	}

	if len(*captured) != 1 {
		t.Fatalf("upstream received %d requests, want 1", len(*captured))
	}
	req := (*captured)[0]
	if req.path != "/transactional" {
		t.Errorf("upstream path = %q, want /transactional", req.path)
	}

	var payload struct {
		TransactionalID string         `json:"transactionalId"`
		Email           string         `json:"email"`
		DataVariables   map[string]any `json:"dataVariables"`
	}
	if err := json.Unmarshal(req.body, &payload); err != nil {
		t.Fatalf("upstream body is not JSON: %v", err)
	}
	if payload.TransactionalID != "tx-123" {
		t.Errorf("transactionalId = %q", payload.TransactionalID)
	}
	// The email is delivered to the configured inbox; the submitter's own
	// address only appears in the template variables.
	if payload.Email != "inbox@example.com" {
		t.Errorf("email = %q, want the configured inbox", payload.Email)
	}
	if payload.DataVariables["email"] != "ada@example.com" {
		t.Errorf("dataVariables = %v", payload.DataVariables)
	}
}

func TestSendForm_Validation(t *testing.T) {
	stub, captured := newLoopsStub(t, http.StatusOK)
	client := newTestLoopsClient(stub.URL)

	tests := []struct {
		name string
		form ContactForm
	}{
		{"missing email", ContactForm{Message: "hello"}},
		{"missing message", ContactForm{Email: "a@b.c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.SendForm(context.Background(), tt.form)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("SendForm() error = %v, want ErrValidation", err)
			}
		})
	}
	if len(*captured) != 0 {
		t.Error("invalid form still reached the upstream")
	}
}
