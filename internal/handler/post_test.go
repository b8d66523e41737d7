package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createPost inserts a post through the API with a valid token.
func createPost(t *testing.T, ts *testServer, body string) map[string]any {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/posts", body, ts.adminToken(t))
	require.Equal(t, http.StatusOK, rec.Code, "create post failed: %s", rec.Body.String())

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	return created
}

// =========================================================================
// PUBLIC READS
// =========================================================================

func TestPostGet(t *testing.T) {
	ts := newTestServer(t)
	createPost(t, ts, `{"id": 1, "title": "Hello", "body": "First post.", "tags": ["go"]}`)

	// Reads need no token.
	rec := ts.do(t, http.MethodGet, "/posts/1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var post map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.Equal(t, "Hello", post["title"])
	assert.Contains(t, post, "created_at")
}

func TestPostGet_NotFound(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/posts/999", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostList(t *testing.T) {
	ts := newTestServer(t)
	createPost(t, ts, `{"title": "a", "body": "b"}`)
	createPost(t, ts, `{"title": "c", "body": "d"}`)

	rec := ts.do(t, http.MethodGet, "/posts", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp["posts"], 2)
}

func TestPostListByCategory(t *testing.T) {
	ts := newTestServer(t)
	createPost(t, ts, `{"title": "a", "body": "b", "category": "engineering"}`)
	createPost(t, ts, `{"title": "c", "body": "d", "category": "design"}`)

	rec := ts.do(t, http.MethodGet, "/posts/category/engineering", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp["posts"], 1)
	assert.Equal(t, "a", resp["posts"][0]["title"])
}

func TestPostListByTag(t *testing.T) {
	ts := newTestServer(t)
	createPost(t, ts, `{"title": "a", "body": "b", "tags": ["go", "api"]}`)
	createPost(t, ts, `{"title": "c", "body": "d", "tags": ["rust"]}`)

	rec := ts.do(t, http.MethodGet, "/posts/tag/go", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp["posts"], 1)
	assert.Equal(t, "a", resp["posts"][0]["title"])
}

// =========================================================================
// PROTECTED WRITES
// =========================================================================

func TestPostCreate_WithToken(t *testing.T) {
	ts := newTestServer(t)

	created := createPost(t, ts, `{"title": "Hello", "body": "First post."}`)
	assert.NotZero(t, created["id"])
	assert.Contains(t, created, "created_at")
}

func TestPostCreate_WithoutToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/posts", `{"title": "t", "body": "b"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Nothing was stored.
	rec = ts.do(t, http.MethodGet, "/posts", "", "")
	assert.JSONEq(t, `{"posts": []}`, rec.Body.String())
}

func TestPostDelete_WithoutToken(t *testing.T) {
	ts := newTestServer(t)
	createPost(t, ts, `{"id": 42, "title": "keep me", "body": "b"}`)

	rec := ts.do(t, http.MethodDelete, "/posts/42", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The post is untouched.
	rec = ts.do(t, http.MethodGet, "/posts/42", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPostUpdate_WithExpiredToken(t *testing.T) {
	ts := newTestServer(t)
	createPost(t, ts, `{"id": 7, "title": "before", "body": "b"}`)

	expired, err := ts.tokens.IssueWithDuration(testAdminUser, -time.Minute)
	require.NoError(t, err)

	rec := ts.do(t, http.MethodPut, "/posts/7", `{"title": "after", "body": "b"}`, expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The stored record did not change.
	rec = ts.do(t, http.MethodGet, "/posts/7", "", "")
	var post map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.Equal(t, "before", post["title"])
}

func TestPostUpdate(t *testing.T) {
	ts := newTestServer(t)
	createPost(t, ts, `{"id": 7, "title": "before", "body": "b", "category": "engineering"}`)

	rec := ts.do(t, http.MethodPut, "/posts/7", `{"title": "after", "body": "b2"}`, ts.adminToken(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "post updated successfully")

	rec = ts.do(t, http.MethodGet, "/posts/7", "", "")
	var post map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.Equal(t, "after", post["title"])
	// Full replace: the omitted category is gone.
	assert.NotContains(t, post, "category")
}

func TestPostDelete_Idempotent(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodDelete, "/posts/999", "", ts.adminToken(t))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "post deleted successfully")
}

func TestPostCreate_Validation(t *testing.T) {
	ts := newTestServer(t)
	token := ts.adminToken(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid JSON", `{`},
		{"missing title", `{"body": "b"}`},
		{"missing body", `{"title": "t"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/posts", tt.body, token)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
