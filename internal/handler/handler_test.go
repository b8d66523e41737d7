package handler

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/smorgan/blog-api/internal/auth"
	"github.com/smorgan/blog-api/internal/repository/sqlite"
	"github.com/smorgan/blog-api/internal/service"
)

const (
	testAdminUser     = "admin"
	testAdminPassword = "hunter2"
	testJWTSecret     = "test-secret-which-is-long-enough"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testServer is a fully wired router over an in-memory database, mirroring
// the production route table for users, posts and login.
type testServer struct {
	router *chi.Mux
	tokens *auth.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := discardLogger()

	tokens, err := auth.NewTokenService(testJWTSecret)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)
	hash, err := passwords.Hash(testAdminPassword)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	userHandler := NewUserHandler(service.NewUserService(sqlite.NewUserStore(db), logger), logger)
	postHandler := NewPostHandler(service.NewPostService(sqlite.NewPostStore(db), logger), logger)
	authHandler := NewAuthHandler(service.NewAuthService(
		service.AdminCredentials{Username: testAdminUser, PasswordHash: hash},
		tokens, passwords, logger,
	), logger)

	requireAuth := auth.RequireAuth(tokens, logger)

	r := chi.NewRouter()
	r.Post("/login", authHandler.HandleLogin)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", userHandler.HandleList)
		r.Get("/{id}", userHandler.HandleGet)
		r.Post("/", userHandler.HandleCreate)
		r.Put("/{id}", userHandler.HandleUpdate)
		r.Delete("/{id}", userHandler.HandleDelete)
	})

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", postHandler.HandleList)
		r.Get("/category/{category}", postHandler.HandleListByCategory)
		r.Get("/tag/{tag}", postHandler.HandleListByTag)
		r.Get("/{id}", postHandler.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", postHandler.HandleCreate)
			r.Put("/{id}", postHandler.HandleUpdate)
			r.Delete("/{id}", postHandler.HandleDelete)
		})
	})

	return &testServer{router: r, tokens: tokens}
}

// do runs one request through the router. token, when non-empty, is sent as
// a bearer credential.
func (ts *testServer) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// adminToken mints a valid token the way a successful login would.
func (ts *testServer) adminToken(t *testing.T) string {
	t.Helper()
	token, err := ts.tokens.Issue(testAdminUser)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return token
}
