package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/smorgan/blog-api/internal/model"
	"github.com/smorgan/blog-api/internal/service"
)

// UserHandler serves the /users endpoints.
//
// Every user that leaves this handler goes through model.User.Redacted so
// the password column never appears in a response, regardless of what the
// store returned.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleList returns all users.
//
// HTTP: GET /users → {"users": [...]}
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	redacted := make([]model.User, len(users))
	for i, u := range users {
		redacted[i] = u.Redacted()
	}
	writeJSON(w, http.StatusOK, map[string][]model.User{"users": redacted})
}

// HandleGet returns a single user, or 404.
//
// HTTP: GET /users/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Redacted())
}

// HandleCreate stores a new user and echoes the record as stored.
//
// HTTP: POST /users
// Body: {"id": 1, "name": "A", "email": "a@x.com", "password": "p"}
// id may be omitted to let the server assign one.
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var user model.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		h.logger.Warn("invalid user JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	created, err := h.users.Create(r.Context(), &user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, created.Redacted())
}

// HandleUpdate replaces the named user's mutable fields.
//
// HTTP: PUT /users/{id}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var user model.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		h.logger.Warn("invalid user JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	if err := h.users.Update(r.Context(), id, &user); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "user updated successfully"})
}

// HandleDelete removes a user. Idempotent: deleting an unknown id still
// reports success.
//
// HTTP: DELETE /users/{id}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "user deleted successfully"})
}
