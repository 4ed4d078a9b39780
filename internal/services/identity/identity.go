// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package identity maps verified email addresses to user records.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"codeberg.org/waap/waap/internal/models"
	"codeberg.org/waap/waap/internal/repository"
)

// Resolver resolves verified emails to users and handles profile
// completion for placeholder accounts.
type Resolver struct {
	repo *repository.Repository
}

// NewResolver creates a new identity resolver.
func NewResolver(repo *repository.Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve looks up the user for a verified email. If no user exists, a
// placeholder record (email only) is created. pending reports whether
// the caller must complete registration before gaining full
// capabilities.
func (r *Resolver) Resolve(ctx context.Context, email string) (user *models.User, pending bool, err error) {
	user, err = r.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		user, err = r.repo.CreateUser(ctx, email)
		if err != nil {
			return nil, false, fmt.Errorf("failed to create placeholder user: %w", err)
		}
		slog.Info("placeholder_user_created", "user_id", user.ID, "email", email)
		return user, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up user: %w", err)
	}

	return user, !user.ProfileComplete(), nil
}

// ProfileInput carries the fields required to complete registration.
type ProfileInput struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	DepartmentID     int64  `json:"department_id"`
	ClassificationID int64  `json:"classification_id"`
	Level            int64  `json:"level"`
}

// FieldError describes one invalid or missing profile field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError enumerates every missing or invalid field. It is
// returned as a whole so callers can report all problems at once; no
// partial update is applied.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return "invalid profile: " + strings.Join(names, ", ")
}

// CompleteProfile validates and applies the profile-completion fields
// in a single write. Returns *ValidationError when any field is missing
// or invalid.
func (r *Resolver) CompleteProfile(ctx context.Context, userID int64, input ProfileInput) (*models.User, error) {
	var verr ValidationError

	if strings.TrimSpace(input.FirstName) == "" {
		verr.Fields = append(verr.Fields, FieldError{Field: "first_name", Reason: "required"})
	}
	if strings.TrimSpace(input.LastName) == "" {
		verr.Fields = append(verr.Fields, FieldError{Field: "last_name", Reason: "required"})
	}

	if input.DepartmentID == 0 {
		verr.Fields = append(verr.Fields, FieldError{Field: "department_id", Reason: "required"})
	} else if _, err := r.repo.GetDepartment(ctx, input.DepartmentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			verr.Fields = append(verr.Fields, FieldError{Field: "department_id", Reason: "unknown department"})
		} else {
			return nil, fmt.Errorf("failed to check department: %w", err)
		}
	}

	if input.ClassificationID == 0 {
		verr.Fields = append(verr.Fields, FieldError{Field: "classification_id", Reason: "required"})
	} else if _, err := r.repo.GetClassification(ctx, input.ClassificationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			verr.Fields = append(verr.Fields, FieldError{Field: "classification_id", Reason: "unknown classification"})
		} else {
			return nil, fmt.Errorf("failed to check classification: %w", err)
		}
	}

	if input.Level < 0 || input.Level > 100 {
		verr.Fields = append(verr.Fields, FieldError{Field: "level", Reason: "must be between 0 and 100"})
	}

	if len(verr.Fields) > 0 {
		return nil, &verr
	}

	err := r.repo.UpdateUserProfile(ctx, userID,
		strings.TrimSpace(input.FirstName), strings.TrimSpace(input.LastName),
		input.DepartmentID, input.ClassificationID, input.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	user, err := r.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	slog.Info("profile_completed", "user_id", userID)
	return user, nil
}
