// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"codeberg.org/waap/waap/internal/auth"
	"codeberg.org/waap/waap/internal/ctxkeys"
	"codeberg.org/waap/waap/internal/i18n"
	"codeberg.org/waap/waap/internal/services/identity"
	"codeberg.org/waap/waap/internal/services/session"
	"codeberg.org/waap/waap/internal/services/token"
	"github.com/labstack/echo/v4"
)

// LoginMailer sends one-time login links.
type LoginMailer interface {
	SendLoginLink(ctx context.Context, toEmail, token string) error
}

// AuthHandlers contains handlers for the one-time-link login flow.
type AuthHandlers struct {
	tokens   *token.Store
	identity *identity.Resolver
	sessions *session.Manager
	mailer   LoginMailer
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(tokens *token.Store, resolver *identity.Resolver, sessions *session.Manager, mailer LoginMailer) *AuthHandlers {
	return &AuthHandlers{
		tokens:   tokens,
		identity: resolver,
		sessions: sessions,
		mailer:   mailer,
	}
}

// LoginRequest is the request body for requesting a login link.
type LoginRequest struct {
	Email string `json:"email" form:"email"`
}

// Login issues a one-time token and mails the login link. The response
// is identical whether or not the address is known, so the endpoint
// cannot be used to enumerate accounts.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return jsonError(c, http.StatusBadRequest, "a valid email address is required")
	}

	ctx := c.Request().Context()
	tok, err := h.tokens.Issue(ctx, email)
	if err != nil {
		slog.Error("login_token_issue_failed", "error", err)
		return jsonError(c, http.StatusInternalServerError, "failed to create login link")
	}

	if err := h.mailer.SendLoginLink(ctx, email, tok.Token); err != nil {
		slog.Error("login_link_send_failed", "email", email, "error", err)
		return jsonError(c, http.StatusInternalServerError, "failed to send login link")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"message": i18n.T(ctx, "login_link_sent"),
	})
}

// Verify redeems a one-time token and establishes the session. Users
// without a complete profile are admitted in a pending-registration
// sub-state and directed to the profile-completion step.
func (h *AuthHandlers) Verify(c echo.Context) error {
	ctx := c.Request().Context()

	email, err := h.tokens.Redeem(ctx, c.Param("token"))
	if err != nil {
		switch {
		case errors.Is(err, token.ErrTokenNotFound):
			return jsonError(c, http.StatusNotFound, i18n.T(ctx, "invalid_login_link"))
		case errors.Is(err, token.ErrTokenExpired):
			return jsonError(c, http.StatusGone, i18n.T(ctx, "expired_login_link"))
		case errors.Is(err, token.ErrTokenUsed):
			return jsonError(c, http.StatusGone, i18n.T(ctx, "used_login_link"))
		default:
			slog.Error("login_verify_failed", "error", err)
			return jsonError(c, http.StatusInternalServerError, "login failed")
		}
	}

	user, pending, err := h.identity.Resolve(ctx, email)
	if err != nil {
		slog.Error("identity_resolve_failed", "email", email, "error", err)
		return jsonError(c, http.StatusInternalServerError, "login failed")
	}

	// The pending-redirect slot stored before the login challenge is
	// consumed here; profile completion takes precedence over it.
	redirect := "/browse"
	if sess, ok := ctx.Value(ctxkeys.Session{}).(*session.Data); ok && sess.PendingRedirect != "" {
		redirect = sess.PendingRedirect
	}
	if pending {
		redirect = "/register"
	}

	cookie, err := h.sessions.Create(&session.Data{UserID: user.ID})
	if err != nil {
		slog.Error("session_create_failed", "user_id", user.ID, "error", err)
		return jsonError(c, http.StatusInternalServerError, "login failed")
	}
	c.SetCookie(cookie)

	resp := map[string]any{
		"status":               "ok",
		"user_id":              user.ID,
		"pending_registration": pending,
		"redirect":             redirect,
	}
	if pending {
		resp["message"] = i18n.T(ctx, "complete_registration")
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout clears the session cookie and sends the caller to the public
// listing.
func (h *AuthHandlers) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	return c.Redirect(http.StatusSeeOther, "/browse")
}

// Register completes the profile of the authenticated user. Nothing is
// applied unless every field validates.
func (h *AuthHandlers) Register(c echo.Context) error {
	user := auth.GetUser(c.Request().Context())
	if user == nil {
		return jsonError(c, http.StatusUnauthorized, "authentication required")
	}

	var input identity.ProfileInput
	if err := c.Bind(&input); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}

	updated, err := h.identity.CompleteProfile(c.Request().Context(), user.ID, input)
	if err != nil {
		var verr *identity.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]any{
				"error":  "validation failed",
				"fields": verr.Fields,
			})
		}
		slog.Error("profile_completion_failed", "user_id", user.ID, "error", err)
		return jsonError(c, http.StatusInternalServerError, "failed to update profile")
	}

	return c.JSON(http.StatusOK, updated)
}
