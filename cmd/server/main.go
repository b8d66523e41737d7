// Package main is the entry point for the blog API server.
//
// main stays minimal: read configuration from the environment, build the
// logger, hand both to internal/server. All actual logic lives in the
// imported packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/smorgan/blog-api/internal/relay"
	"github.com/smorgan/blog-api/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	dbPath := "data/blog.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// The signing secret is required: the server refuses to start with an
	// unset or weak secret rather than fall back to a baked-in default.
	// Generate one with: openssl rand -hex 32
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is not set, refusing to start")
		os.Exit(1)
	}

	// Admin credential. The password is supplied pre-hashed (bcrypt):
	//   htpasswd -bnBC 12 "" 'yourpassword' | tr -d ':\n'
	// If unset, login is disabled and every protected route rejects.
	adminUsername := os.Getenv("ADMIN_USERNAME")
	if adminUsername == "" {
		adminUsername = "admin"
	}
	adminPasswordHash := os.Getenv("ADMIN_PASSWORD_HASH")
	if adminPasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH not set, login is disabled")
	}

	allowedOrigins := []string{"*"}
	if env := os.Getenv("ALLOWED_ORIGINS"); env != "" {
		allowedOrigins = strings.Split(env, ",")
	}

	loopsBaseURL := os.Getenv("LOOPS_BASE_URL")
	if loopsBaseURL == "" {
		loopsBaseURL = "https://app.loops.so/api/v1"
	}
	chatModelURL := os.Getenv("CHAT_MODEL_URL")
	if chatModelURL == "" {
		chatModelURL = "https://api.replicate.com/v1/models/meta/meta-llama-3-70b-instruct/predictions"
	}

	cfg := server.Config{
		Port:              port,
		DBPath:            dbPath,
		JWTSecret:         jwtSecret,
		AdminUsername:     adminUsername,
		AdminPasswordHash: adminPasswordHash,
		AllowedOrigins:    allowedOrigins,
		Loops: relay.LoopsConfig{
			BaseURL:         loopsBaseURL,
			APIKey:          os.Getenv("LOOPS_API_KEY"),
			TransactionalID: os.Getenv("LOOPS_TRANSACTIONAL_ID"),
			Inbox:           os.Getenv("CONTACT_INBOX"),
		},
		Chat: relay.ChatConfig{
			ModelURL: chatModelURL,
			Token:    os.Getenv("CHAT_API_TOKEN"),
		},
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down via SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
