// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/waap/waap/internal/models"
)

// CreateOneTimeToken persists a new login token.
func (r *Repository) CreateOneTimeToken(ctx context.Context, token, email string, createdAt, expiresAt time.Time) (*models.OneTimeToken, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO one_time_tokens (token, email, created_at, expires_at, is_used) VALUES (?, ?, ?, ?, 0)`,
		token, email, createdAt, expiresAt)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.OneTimeToken{
		ID:        id,
		Token:     token,
		Email:     email,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}, nil
}

// GetOneTimeToken retrieves a token by its exact opaque string.
func (r *Repository) GetOneTimeToken(ctx context.Context, token string) (*models.OneTimeToken, error) {
	var t models.OneTimeToken
	err := r.db.GetContext(ctx, &t, `SELECT * FROM one_time_tokens WHERE token = ?`, token)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &t, nil
}

// MarkTokenUsed flips is_used, but only if it was previously unset.
// Returns true when this call won the flip; false means a concurrent
// redemption already consumed the token. This conditional update is
// what serializes concurrent redemptions of the same token.
func (r *Repository) MarkTokenUsed(ctx context.Context, token string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE one_time_tokens SET is_used = 1 WHERE token = ? AND is_used = 0`, token)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CountTokensForEmail returns how many tokens exist for an email.
func (r *Repository) CountTokensForEmail(ctx context.Context, email string) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT count(*) FROM one_time_tokens WHERE email = ?`, email)
	return count, err
}
