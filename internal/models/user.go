// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"strings"
	"time"
)

// User is a portal user identified by a verified government email
// address. A record may exist as a placeholder (email only) until the
// profile-completion step fills in the remaining fields.
type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID               int64     `db:"id" json:"id"`
	FirstName        string    `db:"first_name" json:"first_name"`
	LastName         string    `db:"last_name" json:"last_name"`
	Email            string    `db:"email" json:"email"`
	DepartmentID     *int64    `db:"department_id" json:"department_id"`
	ClassificationID *int64    `db:"classification_id" json:"classification_id"`
	Level            *int64    `db:"level" json:"level"`
	IsAdmin          bool      `db:"is_admin" json:"is_admin"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// ProfileComplete reports whether the user has finished registration.
// Placeholder users created during login verification stay incomplete
// until name, department, classification and level are all present.
func (u *User) ProfileComplete() bool {
	return strings.TrimSpace(u.FirstName) != "" &&
		strings.TrimSpace(u.LastName) != "" &&
		u.DepartmentID != nil &&
		u.ClassificationID != nil &&
		u.Level != nil
}

// FullName returns the display name for the user.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
