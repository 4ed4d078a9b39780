// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"codeberg.org/waap/waap/internal/auth"
	"codeberg.org/waap/waap/internal/i18n"
	"codeberg.org/waap/waap/internal/models"
	"codeberg.org/waap/waap/internal/repository"
	"codeberg.org/waap/waap/internal/services/lifecycle"
	"github.com/labstack/echo/v4"
)

// PostingHandlers contains handlers for job postings.
type PostingHandlers struct {
	repo      *repository.Repository
	lifecycle *lifecycle.Manager
}

// NewPostings creates a new PostingHandlers instance.
func NewPostings(repo *repository.Repository, lc *lifecycle.Manager) *PostingHandlers {
	return &PostingHandlers{repo: repo, lifecycle: lc}
}

// Browse is the public listing: approved, unexpired postings with
// optional department, classification and language-profile filters.
func (h *PostingHandlers) Browse(c echo.Context) error {
	var filter repository.PostingFilter

	if dept := c.QueryParam("department"); dept != "" {
		id, err := strconv.ParseInt(dept, 10, 64)
		if err != nil {
			return jsonError(c, http.StatusBadRequest, "invalid department filter")
		}
		filter.DepartmentID = id
	}
	filter.Classification = c.QueryParam("classification")
	filter.LanguageProfile = c.QueryParam("language_profile")

	postings, err := h.repo.ListPublicJobPostings(c.Request().Context(), time.Now(), filter)
	if err != nil {
		slog.Error("browse_failed", "error", err)
		return jsonError(c, http.StatusInternalServerError, "failed to list job postings")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"count":        len(postings),
		"job_postings": postings,
	})
}

// Detail returns a single posting. Unknown IDs get a generic message
// so the endpoint leaks nothing about what exists.
func (h *PostingHandlers) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return jsonError(c, http.StatusNotFound, i18n.T(c.Request().Context(), "posting_not_found"))
	}

	posting, err := h.repo.GetJobPosting(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, i18n.T(c.Request().Context(), "posting_not_found"))
		}
		return jsonError(c, http.StatusInternalServerError, "failed to load job posting")
	}

	return c.JSON(http.StatusOK, posting)
}

// CreateRequest is the request body for creating a posting.
type CreateRequest struct { //nolint:govet // fieldalignment not critical for request structs
	JobTitle            string  `json:"job_title"`
	DepartmentID        int64   `json:"department_id"`
	Location            string  `json:"location"`
	Classification      string  `json:"classification"`
	LanguageProfile     string  `json:"language_profile"`
	AlternationCriteria string  `json:"alternation_criteria"`
	ContactEmail        *string `json:"contact_email"`
	ExpirationDate      *string `json:"expiration_date"`
}

// Create adds a posting owned by the session user. The expiration
// defaults to thirty days out when not provided.
func (h *PostingHandlers) Create(c echo.Context) error {
	user := auth.GetUser(c.Request().Context())
	if user == nil {
		return jsonError(c, http.StatusUnauthorized, "authentication required")
	}
	if !user.ProfileComplete() {
		return jsonError(c, http.StatusForbidden, i18n.T(c.Request().Context(), "complete_registration"))
	}

	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}

	if msg := validateCreate(&req); msg != "" {
		return jsonError(c, http.StatusBadRequest, msg)
	}

	posting := &models.JobPosting{
		JobTitle:            strings.TrimSpace(req.JobTitle),
		DepartmentID:        req.DepartmentID,
		Location:            strings.TrimSpace(req.Location),
		Classification:      strings.ToUpper(req.Classification),
		LanguageProfile:     strings.ToUpper(req.LanguageProfile),
		AlternationCriteria: req.AlternationCriteria,
		ContactEmail:        req.ContactEmail,
		CreatorID:           &user.ID,
	}
	if req.ExpirationDate != nil {
		expiry, err := time.Parse(time.RFC3339, *req.ExpirationDate)
		if err != nil {
			return jsonError(c, http.StatusBadRequest, "expiration_date must be RFC 3339")
		}
		posting.ExpirationDate = expiry
	}

	created, err := h.repo.CreateJobPosting(c.Request().Context(), posting)
	if err != nil {
		slog.Error("posting_create_failed", "user_id", user.ID, "error", err)
		return jsonError(c, http.StatusInternalServerError, "failed to create job posting")
	}

	slog.Info("posting_created", "posting_id", created.ID, "user_id", user.ID)
	return c.JSON(http.StatusCreated, created)
}

func validateCreate(req *CreateRequest) string {
	if strings.TrimSpace(req.JobTitle) == "" {
		return "job_title is required"
	}
	if strings.TrimSpace(req.Location) == "" {
		return "location is required"
	}
	if req.DepartmentID == 0 {
		return "department_id is required"
	}
	if !slices.Contains(models.ClassificationChoices(), strings.ToUpper(req.Classification)) {
		return "classification must be one of " + strings.Join(models.ClassificationChoices(), ", ")
	}
	if !slices.Contains(models.LanguageProfileChoices(), strings.ToUpper(req.LanguageProfile)) {
		return "language_profile must be one of " + strings.Join(models.LanguageProfileChoices(), ", ")
	}
	return ""
}

// DeleteRequest starts the two-step deletion of a posting.
func (h *PostingHandlers) DeleteRequest(c echo.Context) error {
	user := auth.GetUser(c.Request().Context())
	if user == nil {
		return jsonError(c, http.StatusUnauthorized, "authentication required")
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return jsonError(c, http.StatusNotFound, i18n.T(c.Request().Context(), "posting_not_found"))
	}

	err = h.lifecycle.RequestDeletion(c.Request().Context(), id, user.ID)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"message": i18n.T(c.Request().Context(), "deletion_requested"),
		})
	case errors.Is(err, lifecycle.ErrPostingNotFound):
		return jsonError(c, http.StatusNotFound, i18n.T(c.Request().Context(), "posting_not_found"))
	case errors.Is(err, lifecycle.ErrNotOwner):
		return jsonError(c, http.StatusForbidden, "only the posting creator may request deletion")
	default:
		slog.Error("deletion_request_failed", "posting_id", id, "error", err)
		return jsonError(c, http.StatusInternalServerError, "failed to request deletion")
	}
}

// DeleteConfirm finishes the deletion via the emailed token.
func (h *PostingHandlers) DeleteConfirm(c echo.Context) error {
	err := h.lifecycle.ConfirmDeletion(c.Request().Context(), c.Param("token"))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"message": i18n.T(c.Request().Context(), "posting_deleted"),
		})
	case errors.Is(err, lifecycle.ErrInvalidDeletionLink):
		return jsonError(c, http.StatusNotFound, i18n.T(c.Request().Context(), "invalid_deletion_link"))
	default:
		slog.Error("deletion_confirm_failed", "error", err)
		return jsonError(c, http.StatusInternalServerError, "failed to delete job posting")
	}
}

// ModerateRequest is the request body for a moderation decision.
type ModerateRequest struct {
	Status string `json:"status"`
}

// Moderate applies an administrator moderation transition.
func (h *PostingHandlers) Moderate(c echo.Context) error {
	user := auth.GetUser(c.Request().Context())
	if user == nil || !user.IsAdmin {
		return jsonError(c, http.StatusForbidden, "administrator access required")
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return jsonError(c, http.StatusNotFound, i18n.T(c.Request().Context(), "posting_not_found"))
	}

	var req ModerateRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}

	status := models.ModerationStatus(strings.ToUpper(req.Status))
	if !status.IsValid() {
		return jsonError(c, http.StatusBadRequest, "unknown moderation status")
	}

	posting, err := h.lifecycle.Moderate(c.Request().Context(), id, status, user.Email)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, posting)
	case errors.Is(err, lifecycle.ErrPostingNotFound):
		return jsonError(c, http.StatusNotFound, i18n.T(c.Request().Context(), "posting_not_found"))
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return jsonError(c, http.StatusConflict, err.Error())
	default:
		slog.Error("moderation_failed", "posting_id", id, "error", err)
		return jsonError(c, http.StatusInternalServerError, "failed to moderate job posting")
	}
}
