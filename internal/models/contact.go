// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ContactMessage is a relayed message from a visitor to a posting
// owner. Created once and never updated except for the is_sent flag,
// which is set once after the dispatch attempt. Rows are cascade
// deleted with their posting.
type ContactMessage struct { //nolint:govet // fieldalignment: readability over optimization
	ID              int64     `db:"id" json:"id"`
	PublicID        string    `db:"public_id" json:"public_id"`
	JobPostingID    int64     `db:"job_posting_id" json:"job_posting_id"`
	SenderName      string    `db:"sender_name" json:"sender_name"`
	SenderEmail     string    `db:"sender_email" json:"-"`
	SenderEmailHash string    `db:"sender_email_hash" json:"sender_email_hash"`
	Message         string    `db:"message" json:"message"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	IsSent          bool      `db:"is_sent" json:"is_sent"`
}

// HashEmail computes the SHA-256 hex digest stored alongside a contact
// message for dedup and audit without retaining the plaintext elsewhere.
func HashEmail(email string) string {
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}
