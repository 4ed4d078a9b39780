// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package server wires the application together and runs the HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/waap/waap/internal/config"
	"codeberg.org/waap/waap/internal/database"
	"codeberg.org/waap/waap/internal/handlers"
	"codeberg.org/waap/waap/internal/i18n"
	"codeberg.org/waap/waap/internal/repository"
	"codeberg.org/waap/waap/internal/services/email"
	"codeberg.org/waap/waap/internal/services/identity"
	"codeberg.org/waap/waap/internal/services/lifecycle"
	"codeberg.org/waap/waap/internal/services/relay"
	"codeberg.org/waap/waap/internal/services/session"
	"codeberg.org/waap/waap/internal/services/token"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	SetupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// i18n
	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	// Repository and services
	repo := repository.New(db)

	mailer, err := email.NewService(&cfg.SMTP, cfg.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to create email service: %w", err)
	}

	sessions, err := session.NewManager(&cfg.Session)
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}

	tokens := token.NewStore(repo)
	resolver := identity.NewResolver(repo)
	lc := lifecycle.NewManager(repo, mailer)
	contactRelay := relay.New(repo, mailer)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	setupMiddleware(e, cfg, sessions, repo)
	setupRoutes(e, repo, tokens, resolver, sessions, mailer, lc, contactRelay)

	return startWithGracefulShutdown(e, cfg)
}

func setupRoutes(
	e *echo.Echo,
	repo *repository.Repository,
	tokens *token.Store,
	resolver *identity.Resolver,
	sessions *session.Manager,
	mailer *email.Service,
	lc *lifecycle.Manager,
	contactRelay *relay.Relay,
) {
	h := handlers.New(repo)
	authHandler := handlers.NewAuth(tokens, resolver, sessions, mailer)
	postingHandler := handlers.NewPostings(repo, lc)
	contactHandler := handlers.NewContact(contactRelay)

	// Public routes
	e.GET("/health", h.Health)
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, "/browse")
	})
	e.GET("/browse", postingHandler.Browse)
	e.GET("/departments", h.Departments)
	e.GET("/classifications", h.Classifications)

	// One-time-link login flow
	e.POST("/login", authHandler.Login)
	e.GET("/login/verify/:token", authHandler.Verify)
	e.POST("/logout", authHandler.Logout)

	// Job postings
	e.GET("/job-postings/:id", postingHandler.Detail)
	e.POST("/job-postings/:id/contact", contactHandler.Submit)
	e.POST("/job-postings/delete/:token", postingHandler.DeleteConfirm)

	// Authenticated routes
	authed := e.Group("", requireSession(sessions))
	authed.POST("/register", authHandler.Register)
	authed.POST("/job-postings", postingHandler.Create)
	authed.POST("/job-postings/:id/delete-request", postingHandler.DeleteRequest)

	// Moderation (admin-gated in the handler)
	authed.POST("/admin/job-postings/:id/moderate", postingHandler.Moderate)
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
