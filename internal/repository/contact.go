// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/waap/waap/internal/models"
)

// CreateContactMessage persists a relayed message. The row is written
// before any dispatch attempt so a record survives transport failures.
func (r *Repository) CreateContactMessage(ctx context.Context, m *models.ContactMessage) (*models.ContactMessage, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO contact_messages
		 (public_id, job_posting_id, sender_name, sender_email, sender_email_hash, message, created_at, is_sent)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		m.PublicID, m.JobPostingID, m.SenderName, m.SenderEmail, m.SenderEmailHash, m.Message, m.CreatedAt)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	m.ID = id
	return m, nil
}

// GetContactMessage retrieves a message by ID.
func (r *Repository) GetContactMessage(ctx context.Context, id int64) (*models.ContactMessage, error) {
	var m models.ContactMessage
	if err := r.db.GetContext(ctx, &m, `SELECT * FROM contact_messages WHERE id = ?`, id); err != nil {
		return nil, wrapErr(err)
	}
	return &m, nil
}

// MarkContactMessageSent records a confirmed transport handoff.
func (r *Repository) MarkContactMessageSent(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE contact_messages SET is_sent = 1 WHERE id = ?`, id)
	return err
}

// ListContactMessagesForPosting returns all messages for a posting,
// oldest first.
func (r *Repository) ListContactMessagesForPosting(ctx context.Context, postingID int64) ([]models.ContactMessage, error) {
	var messages []models.ContactMessage
	err := r.db.SelectContext(ctx, &messages,
		`SELECT * FROM contact_messages WHERE job_posting_id = ? ORDER BY created_at`, postingID)
	if err != nil {
		return nil, err
	}
	return messages, nil
}
