// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token implements the one-time login token store.
package token

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"codeberg.org/waap/waap/internal/models"
	"codeberg.org/waap/waap/internal/repository"
)

const (
	// TokenBytes is the entropy in bytes for generated tokens.
	TokenBytes = 32
	// TokenExpiry is how long a login token stays redeemable.
	TokenExpiry = time.Hour
)

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenUsed     = errors.New("token already used")
	// ErrStorageConflict is returned on the effectively impossible
	// random collision of two generated tokens.
	ErrStorageConflict = errors.New("token storage conflict")
)

// Store issues and redeems one-time tokens backed by the database.
type Store struct {
	repo *repository.Repository
	now  func() time.Time
}

// NewStore creates a token store. The clock is injectable for tests.
func NewStore(repo *repository.Repository) *Store {
	return &Store{repo: repo, now: time.Now}
}

// WithClock overrides the store's clock.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Generate returns a fresh opaque token string with TokenBytes of
// entropy, URL-safe encoded. Also used for deletion tokens, which share
// the same entropy requirements.
func Generate() (string, error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Issue creates and persists a new token for the email, valid for one
// hour from creation.
func (s *Store) Issue(ctx context.Context, email string) (*models.OneTimeToken, error) {
	raw, err := Generate()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	tok, err := s.repo.CreateOneTimeToken(ctx, raw, email, now, now.Add(TokenExpiry))
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrStorageConflict
		}
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}

	slog.Info("token_issued", "email", email, "expires_at", tok.ExpiresAt)
	return tok, nil
}

// Redeem consumes a token and returns the email it authenticates.
// A token authenticates a session at most once: the used flag is
// flipped with a conditional update so two concurrent redemptions of
// the same token cannot both succeed.
func (s *Store) Redeem(ctx context.Context, raw string) (string, error) {
	tok, err := s.repo.GetOneTimeToken(ctx, raw)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to look up token: %w", err)
	}

	if tok.IsUsed {
		return "", ErrTokenUsed
	}
	if s.now().After(tok.ExpiresAt) {
		return "", ErrTokenExpired
	}

	won, err := s.repo.MarkTokenUsed(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("failed to mark token used: %w", err)
	}
	if !won {
		// Lost the race against a concurrent redemption.
		return "", ErrTokenUsed
	}

	slog.Info("token_redeemed", "email", tok.Email)
	return tok.Email, nil
}
