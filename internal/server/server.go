// Package server wires handlers, middleware and routes together and owns
// the HTTP server lifecycle. It is the composition root: every dependency
// is constructed here, in one place, and flows down through constructors.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/smorgan/blog-api/internal/auth"
	"github.com/smorgan/blog-api/internal/handler"
	"github.com/smorgan/blog-api/internal/middleware"
	"github.com/smorgan/blog-api/internal/relay"
	sqliteRepo "github.com/smorgan/blog-api/internal/repository/sqlite"
	"github.com/smorgan/blog-api/internal/service"
)

// Config holds everything main reads from the environment.
type Config struct {
	Port              int
	DBPath            string
	JWTSecret         string
	AdminUsername     string
	AdminPasswordHash string
	AllowedOrigins    []string
	Loops             relay.LoopsConfig
	Chat              relay.ChatConfig
}

// Server is the HTTP server and the resources it owns. The database pool is
// created in New and closed only after graceful shutdown completes, so no
// in-flight request ever sees a closed connection.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: the sqlite pool feeds the
// stores, the stores feed the services, the services feed the handlers.
// Handlers never see the database; services never see HTTP.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and the route table.
//
//	GET    /                       banner
//	GET    /health_check           liveness probe
//	POST   /login                  issue bearer token
//	GET    /users, /users/{id}     open
//	POST   /users                  open
//	PUT    /users/{id}             open
//	DELETE /users/{id}             open
//	GET    /posts, /posts/{id}     open
//	GET    /posts/category/{c}     open
//	GET    /posts/tag/{t}          open
//	POST   /posts                  auth
//	PUT    /posts/{id}             auth
//	DELETE /posts/{id}             auth
//	POST   /contacts               auth
//	POST   /send_form              auth
//	POST   /chat                   auth
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	// Global middleware, in order: request id and real IP first so the
	// logger sees them, recoverer so a panicking handler returns 500.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Services and handlers.
	userService := service.NewUserService(sqliteRepo.NewUserStore(s.db), s.logger)
	postService := service.NewPostService(sqliteRepo.NewPostStore(s.db), s.logger)
	authService := service.NewAuthService(
		service.AdminCredentials{
			Username:     s.config.AdminUsername,
			PasswordHash: s.config.AdminPasswordHash,
		},
		tokens,
		auth.NewPasswordService(),
		s.logger,
	)

	userHandler := handler.NewUserHandler(userService, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)
	authHandler := handler.NewAuthHandler(authService, s.logger)
	relayHandler := handler.NewRelayHandler(
		relay.NewLoopsClient(s.config.Loops, s.logger),
		relay.NewChatClient(s.config.Chat, s.logger),
		s.logger,
	)

	requireAuth := auth.RequireAuth(tokens, s.logger)

	s.router.Get("/", handler.HandleRoot)
	s.router.Get("/health_check", handler.HandleHealthCheck)
	s.router.Post("/login", authHandler.HandleLogin)

	s.router.Route("/users", func(r chi.Router) {
		r.Get("/", userHandler.HandleList)
		r.Get("/{id}", userHandler.HandleGet)
		r.Post("/", userHandler.HandleCreate)
		r.Put("/{id}", userHandler.HandleUpdate)
		r.Delete("/{id}", userHandler.HandleDelete)
	})

	s.router.Route("/posts", func(r chi.Router) {
		r.Get("/", postHandler.HandleList)
		r.Get("/category/{category}", postHandler.HandleListByCategory)
		r.Get("/tag/{tag}", postHandler.HandleListByTag)
		r.Get("/{id}", postHandler.HandleGet)

		// Writes require a valid bearer token.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", postHandler.HandleCreate)
			r.Put("/{id}", postHandler.HandleUpdate)
			r.Delete("/{id}", postHandler.HandleDelete)
		})
	})

	s.router.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/contacts", relayHandler.HandleCreateContact)
		r.Post("/send_form", relayHandler.HandleSendForm)
		r.Post("/chat", relayHandler.HandleChat)
	})

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully:
// stop accepting connections, give in-flight requests 30s to finish, and
// close the database last.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
