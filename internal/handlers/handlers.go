// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package handlers contains the HTTP handlers for the portal API.
package handlers

import (
	"net/http"

	"codeberg.org/waap/waap/internal/repository"
	"github.com/labstack/echo/v4"
)

// Handlers contains the general-purpose HTTP handlers.
type Handlers struct {
	repo *repository.Repository
}

// New creates a new Handlers instance.
func New(repo *repository.Repository) *Handlers {
	return &Handlers{repo: repo}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Departments lists the department lookup table.
func (h *Handlers) Departments(c echo.Context) error {
	depts, err := h.repo.ListDepartments(c.Request().Context())
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "failed to list departments")
	}
	return c.JSON(http.StatusOK, depts)
}

// Classifications lists the classification lookup table.
func (h *Handlers) Classifications(c echo.Context) error {
	classes, err := h.repo.ListClassifications(c.Request().Context())
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "failed to list classifications")
	}
	return c.JSON(http.StatusOK, classes)
}
