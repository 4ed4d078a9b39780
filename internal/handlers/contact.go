// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"codeberg.org/waap/waap/internal/i18n"
	"codeberg.org/waap/waap/internal/services/relay"
	"github.com/labstack/echo/v4"
)

// ContactHandlers contains the contact-relay handler.
type ContactHandlers struct {
	relay *relay.Relay
}

// NewContact creates a new ContactHandlers instance.
func NewContact(r *relay.Relay) *ContactHandlers {
	return &ContactHandlers{relay: r}
}

// Submit relays a visitor message to a posting owner. Rejections
// (validation and state errors) are distinguished from dispatch
// problems: a stored-but-undelivered message answers 202 so the UI can
// say "saved but not delivered" instead of "rejected".
func (h *ContactHandlers) Submit(c echo.Context) error {
	ctx := c.Request().Context()

	postingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return jsonError(c, http.StatusNotFound, i18n.T(ctx, "posting_not_found"))
	}

	var sub relay.Submission
	if err := c.Bind(&sub); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}

	msg, err := h.relay.Submit(ctx, postingID, sub)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, map[string]any{
			"status":    "sent",
			"public_id": msg.PublicID,
			"message":   i18n.T(ctx, "message_sent"),
		})
	case errors.Is(err, relay.ErrPostingNotFound):
		return jsonError(c, http.StatusNotFound, i18n.T(ctx, "posting_not_found"))
	case errors.Is(err, relay.ErrPostingExpired):
		return jsonError(c, http.StatusGone, i18n.T(ctx, "posting_expired"))
	case errors.Is(err, relay.ErrUnderReview):
		return jsonError(c, http.StatusConflict, i18n.T(ctx, "posting_under_review"))
	case errors.Is(err, relay.ErrNoRecipient), errors.Is(err, relay.ErrDispatchFailed):
		return c.JSON(http.StatusAccepted, map[string]any{
			"status":    "saved",
			"public_id": msg.PublicID,
			"message":   i18n.T(ctx, "message_saved_not_delivered"),
		})
	default:
		var verr *relay.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]any{
				"error":  "validation failed",
				"fields": verr.Fields,
			})
		}
		slog.Error("contact_submit_failed", "posting_id", postingID, "error", err)
		return jsonError(c, http.StatusInternalServerError, "failed to submit message")
	}
}
