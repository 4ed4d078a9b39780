// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"codeberg.org/waap/waap/internal/auth"
	"codeberg.org/waap/waap/internal/config"
	"codeberg.org/waap/waap/internal/ctxkeys"
	"codeberg.org/waap/waap/internal/i18n"
	"codeberg.org/waap/waap/internal/repository"
	"codeberg.org/waap/waap/internal/services/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func setupMiddleware(e *echo.Echo, cfg *config.Config, sessions *session.Manager, repo *repository.Repository) {
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.Server.MaxBodySize)))
	e.Use(i18nMiddleware())
	e.Use(loadSession(sessions, repo))
}

// requestLogger returns middleware that logs requests using slog.
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				slog.LogAttrs(c.Request().Context(), slog.LevelError, "request", attrs...)
			} else {
				slog.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			}

			return nil
		},
	})
}

// i18nMiddleware sets the locale based on the Accept-Language header.
func i18nMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			acceptLang := c.Request().Header.Get("Accept-Language")
			lang := i18n.MatchLanguage(acceptLang)
			ctx := i18n.WithLocale(c.Request().Context(), lang)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// loadSession decodes the session cookie and, when it carries a user
// marker, loads the user into the request context. A stale marker
// (user since removed) downgrades the request to anonymous.
func loadSession(sessions *session.Manager, repo *repository.Repository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := sessions.Get(c.Request())
			if err != nil {
				return next(c)
			}

			ctx := context.WithValue(c.Request().Context(), ctxkeys.Session{}, sess)

			if sess.Authenticated() {
				user, err := repo.GetUserByID(ctx, sess.UserID)
				if err == nil {
					ctx = auth.SetUser(ctx, user)
				}
			}

			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// requireSession admits only requests carrying an authenticated-user
// marker. Denied requests get a session cookie holding the originally
// requested target in the single pending-redirect slot, so a later
// login can return the caller to it.
func requireSession(sessions *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if auth.IsAuthenticated(c.Request().Context()) {
				return next(c)
			}

			cookie, err := sessions.Create(&session.Data{
				PendingRedirect: c.Request().RequestURI,
			})
			if err == nil {
				c.SetCookie(cookie)
			}

			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error":    "authentication required",
				"redirect": "/login",
			})
		}
	}
}
