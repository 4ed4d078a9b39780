// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/waap/waap/internal/models"
)

// CreateUser creates a placeholder user carrying only an email address.
// The profile-completion step fills in the remaining fields later.
func (r *Repository) CreateUser(ctx context.Context, email string) (*models.User, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, created_at, updated_at) VALUES (?, ?, ?)`,
		email, now, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return nil, wrapErr(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, email); err != nil {
		return nil, wrapErr(err)
	}
	return &user, nil
}

// UpdateUserProfile applies the profile-completion fields in one write.
func (r *Repository) UpdateUserProfile(ctx context.Context, id int64, firstName, lastName string, departmentID, classificationID, level int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET first_name = ?, last_name = ?, department_id = ?, classification_id = ?, level = ?, updated_at = ?
		 WHERE id = ?`,
		firstName, lastName, departmentID, classificationID, level, time.Now().UTC(), id)
	return err
}

// SetUserAdmin sets or removes admin status for a user.
func (r *Repository) SetUserAdmin(ctx context.Context, id int64, isAdmin bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_admin = ?, updated_at = ? WHERE id = ?`,
		isAdmin, time.Now().UTC(), id)
	return err
}

// ListUsers returns all users ordered by creation date (newest first).
func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, `SELECT * FROM users ORDER BY created_at DESC`); err != nil {
		return nil, err
	}
	return users, nil
}
