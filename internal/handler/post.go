package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/smorgan/blog-api/internal/model"
	"github.com/smorgan/blog-api/internal/service"
)

// PostHandler serves the /posts endpoints. Reads are public; the router
// wraps create/update/delete in the auth middleware.
type PostHandler struct {
	posts  *service.PostService
	logger *slog.Logger
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

// HandleList returns all posts.
//
// HTTP: GET /posts → {"posts": [...]}
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.Post{"posts": posts})
}

// HandleListByCategory returns the posts in one category.
//
// HTTP: GET /posts/category/{category} → {"posts": [...]}
func (h *PostHandler) HandleListByCategory(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListByCategory(r.Context(), r.PathValue("category"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.Post{"posts": posts})
}

// HandleListByTag returns the posts carrying one tag.
//
// HTTP: GET /posts/tag/{tag} → {"posts": [...]}
func (h *PostHandler) HandleListByTag(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListByTag(r.Context(), r.PathValue("tag"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.Post{"posts": posts})
}

// HandleGet returns a single post, or 404.
//
// HTTP: GET /posts/{id}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	post, err := h.posts.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HandleCreate stores a new post and echoes the record as stored.
//
// HTTP: POST /posts (auth required)
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var post model.Post
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		h.logger.Warn("invalid post JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	created, err := h.posts.Create(r.Context(), &post)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// HandleUpdate replaces the named post's mutable fields.
//
// HTTP: PUT /posts/{id} (auth required)
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var post model.Post
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		h.logger.Warn("invalid post JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	if err := h.posts.Update(r.Context(), id, &post); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "post updated successfully"})
}

// HandleDelete removes a post. Idempotent.
//
// HTTP: DELETE /posts/{id} (auth required)
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.posts.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "post deleted successfully"})
}
