// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// OneTimeToken is a single-use, time-limited login credential proving
// control of an email address. Tokens are never deleted; redeemed ones
// stay in the table with is_used set as an audit trail.
type OneTimeToken struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64     `db:"id" json:"id"`
	Token     string    `db:"token" json:"-"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	IsUsed    bool      `db:"is_used" json:"is_used"`
}

// Valid reports whether the token can still be redeemed at the given
// instant. A token is valid iff it is unused and not past its expiry.
func (t *OneTimeToken) Valid(now time.Time) bool {
	return !t.IsUsed && !now.After(t.ExpiresAt)
}
