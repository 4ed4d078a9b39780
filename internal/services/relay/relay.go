// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package relay forwards visitor messages to posting owners without
// exposing the owner's address.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"codeberg.org/waap/waap/internal/models"
	"codeberg.org/waap/waap/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrPostingNotFound = errors.New("job posting not found")
	ErrPostingExpired  = errors.New("job posting has expired")
	// ErrUnderReview is returned for any non-approved posting,
	// regardless of expiry.
	ErrUnderReview = errors.New("job posting is currently under review")
	// ErrNoRecipient means the message was stored but no recipient
	// address could be resolved. Distinct from a transport failure,
	// though both surface as a failed send.
	ErrNoRecipient = errors.New("no recipient for contact message")
	// ErrDispatchFailed means the message was stored but the mail
	// handoff failed.
	ErrDispatchFailed = errors.New("failed to dispatch contact message")
)

// ContactMailer delivers a relayed message with the sender's address in
// Reply-To.
type ContactMailer interface {
	SendContactMessage(ctx context.Context, toEmail, jobTitle, senderName, senderEmail, message string) error
}

// Submission is a visitor's contact-form input.
type Submission struct {
	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email"`
	Message     string `json:"message"`
}

// FieldError describes one invalid or missing form field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError enumerates the invalid submission fields.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return "invalid contact submission: " + strings.Join(names, ", ")
}

// Relay accepts contact submissions and dispatches them.
type Relay struct {
	repo   *repository.Repository
	mailer ContactMailer
	now    func() time.Time
}

// New creates a contact relay. The clock is injectable for tests.
func New(repo *repository.Repository, mailer ContactMailer) *Relay {
	return &Relay{repo: repo, mailer: mailer, now: time.Now}
}

// WithClock overrides the relay's clock.
func (r *Relay) WithClock(now func() time.Time) *Relay {
	r.now = now
	return r
}

// Submit relays a message to the owner of a posting.
//
// Preconditions, checked in order: the posting must exist, must be
// active, and must be APPROVED. The message is persisted (with the
// sender email hashed for audit) before any dispatch attempt so a
// record survives transport failures; is_sent is only set after a
// confirmed handoff.
func (r *Relay) Submit(ctx context.Context, postingID int64, sub Submission) (*models.ContactMessage, error) {
	if verr := validate(sub); verr != nil {
		return nil, verr
	}

	posting, err := r.repo.GetJobPosting(ctx, postingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostingNotFound
		}
		return nil, err
	}

	if !posting.Active(r.now()) {
		return nil, ErrPostingExpired
	}
	if posting.ModerationStatus != models.ModerationApproved {
		return nil, ErrUnderReview
	}

	msg := &models.ContactMessage{
		PublicID:        uuid.New().String(),
		JobPostingID:    posting.ID,
		SenderName:      strings.TrimSpace(sub.SenderName),
		SenderEmail:     strings.TrimSpace(sub.SenderEmail),
		SenderEmailHash: models.HashEmail(strings.TrimSpace(sub.SenderEmail)),
		Message:         sub.Message,
	}
	msg, err = r.repo.CreateContactMessage(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("failed to store contact message: %w", err)
	}

	recipient, err := r.resolveRecipient(ctx, posting)
	if err != nil {
		slog.Warn("contact_no_recipient", "posting_id", posting.ID, "message_id", msg.ID)
		return msg, ErrNoRecipient
	}

	if err := r.mailer.SendContactMessage(ctx, recipient, posting.JobTitle, msg.SenderName, msg.SenderEmail, msg.Message); err != nil {
		slog.Error("contact_dispatch_failed", "posting_id", posting.ID, "message_id", msg.ID, "error", err)
		return msg, fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}

	if err := r.repo.MarkContactMessageSent(ctx, msg.ID); err != nil {
		return msg, fmt.Errorf("failed to mark message sent: %w", err)
	}
	msg.IsSent = true

	slog.Info("contact_relayed", "posting_id", posting.ID, "message_id", msg.ID)
	return msg, nil
}

// resolveRecipient picks the posting's contact email, falling back to
// the creator's address.
func (r *Relay) resolveRecipient(ctx context.Context, posting *models.JobPosting) (string, error) {
	if posting.ContactEmail != nil && *posting.ContactEmail != "" {
		return *posting.ContactEmail, nil
	}
	if posting.CreatorID != nil {
		creator, err := r.repo.GetUserByID(ctx, *posting.CreatorID)
		if err != nil {
			return "", err
		}
		return creator.Email, nil
	}
	return "", ErrNoRecipient
}

func validate(sub Submission) *ValidationError {
	var verr ValidationError

	if strings.TrimSpace(sub.SenderName) == "" {
		verr.Fields = append(verr.Fields, FieldError{Field: "sender_name", Reason: "required"})
	}
	if strings.TrimSpace(sub.SenderEmail) == "" {
		verr.Fields = append(verr.Fields, FieldError{Field: "sender_email", Reason: "required"})
	} else if _, err := mail.ParseAddress(strings.TrimSpace(sub.SenderEmail)); err != nil {
		verr.Fields = append(verr.Fields, FieldError{Field: "sender_email", Reason: "invalid email address"})
	}
	if strings.TrimSpace(sub.Message) == "" {
		verr.Fields = append(verr.Fields, FieldError{Field: "message", Reason: "required"})
	}

	if len(verr.Fields) > 0 {
		return &verr
	}
	return nil
}
