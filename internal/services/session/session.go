// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package session implements the signed-cookie session gate.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"codeberg.org/waap/waap/internal/config"
	"github.com/gorilla/securecookie"
)

// ErrNoSession is returned when a request carries no valid session.
var ErrNoSession = errors.New("no session")

// Data is the session payload: the authenticated-user marker plus a
// single pending-redirect slot (not a stack). A zero UserID means
// anonymous.
type Data struct {
	UserID          int64  `json:"user_id"`
	PendingRedirect string `json:"pending_redirect,omitempty"`
}

// Authenticated reports whether the session carries a user marker.
func (d *Data) Authenticated() bool {
	return d != nil && d.UserID != 0
}

// Manager signs (and optionally encrypts) session cookies.
type Manager struct {
	codec      *securecookie.SecureCookie
	cookieName string
	maxAge     int
	secure     bool
}

// NewManager creates a session manager from configuration. An empty
// hash key is replaced with a random one, which invalidates sessions on
// restart and is only acceptable for development.
func NewManager(cfg *config.SessionConfig) (*Manager, error) {
	hashKey, err := keyFromHex(cfg.HashKey, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid session hash key: %w", err)
	}
	if hashKey == nil {
		hashKey = securecookie.GenerateRandomKey(32)
		slog.Warn("session_hash_key_generated", "hint", "set session.hash_key for stable sessions")
	}

	var blockKey []byte
	if cfg.BlockKey != "" {
		blockKey, err = keyFromHex(cfg.BlockKey, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid session block key: %w", err)
		}
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(cfg.MaxAge)

	return &Manager{
		codec:      codec,
		cookieName: cfg.CookieName,
		maxAge:     cfg.MaxAge,
		secure:     cfg.Secure,
	}, nil
}

// Create encodes the session data into a cookie.
func (m *Manager) Create(data *Data) (*http.Cookie, error) {
	encoded, err := m.codec.Encode(m.cookieName, data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}

	return &http.Cookie{
		Name:     m.cookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   m.maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Clear returns an expired cookie that removes the session.
func (m *Manager) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Get decodes the session from the request. Returns ErrNoSession when
// the cookie is absent, expired or tampered with.
func (m *Manager) Get(r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil, ErrNoSession
	}

	var data Data
	if err := m.codec.Decode(m.cookieName, cookie.Value, &data); err != nil {
		return nil, ErrNoSession
	}
	return &data, nil
}

// keyFromHex decodes a hex key and checks its length. Empty input
// yields a nil key.
func keyFromHex(s string, want int) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(key) != want {
		return nil, fmt.Errorf("key must be %d bytes, got %d", want, len(key))
	}
	return key, nil
}

// GenerateKey returns a fresh random key as hex, for provisioning.
func GenerateKey() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
