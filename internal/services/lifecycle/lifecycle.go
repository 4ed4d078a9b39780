// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package lifecycle manages job-posting moderation, deletion and
// expiry-driven anonymization.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"codeberg.org/waap/waap/internal/models"
	"codeberg.org/waap/waap/internal/repository"
	"codeberg.org/waap/waap/internal/services/token"
)

var (
	ErrPostingNotFound     = errors.New("job posting not found")
	ErrInvalidTransition   = errors.New("invalid moderation transition")
	ErrNotOwner            = errors.New("only the posting creator may request deletion")
	ErrInvalidDeletionLink = errors.New("invalid deletion link")
)

// DeletionMailer sends deletion-confirmation links.
type DeletionMailer interface {
	SendDeletionLink(ctx context.Context, toEmail, jobTitle, token string) error
}

// Manager implements the posting lifecycle operations.
type Manager struct {
	repo   *repository.Repository
	mailer DeletionMailer
	now    func() time.Time
}

// NewManager creates a lifecycle manager. The clock is injectable for
// tests.
func NewManager(repo *repository.Repository, mailer DeletionMailer) *Manager {
	return &Manager{repo: repo, mailer: mailer, now: time.Now}
}

// WithClock overrides the manager's clock.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Moderate applies a moderator-initiated status transition and records
// the moderation timestamp and actor.
func (m *Manager) Moderate(ctx context.Context, postingID int64, to models.ModerationStatus, actor string) (*models.JobPosting, error) {
	posting, err := m.repo.GetJobPosting(ctx, postingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostingNotFound
		}
		return nil, err
	}

	if !to.IsValid() || !posting.ModerationStatus.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, posting.ModerationStatus, to)
	}

	if err := m.repo.SetModerationStatus(ctx, postingID, to, actor, m.now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to update moderation status: %w", err)
	}

	slog.Info("posting_moderated", "posting_id", postingID, "from", posting.ModerationStatus, "to", to, "actor", actor)
	return m.repo.GetJobPosting(ctx, postingID)
}

// RequestDeletion starts the two-step deletion flow. Only the posting's
// creator may request deletion; a posting without a creator always
// denies. A fresh random token is stored and mailed out-of-band.
func (m *Manager) RequestDeletion(ctx context.Context, postingID, sessionUserID int64) error {
	posting, err := m.repo.GetJobPosting(ctx, postingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostingNotFound
		}
		return err
	}

	if posting.CreatorID == nil || *posting.CreatorID != sessionUserID {
		return ErrNotOwner
	}

	creator, err := m.repo.GetUserByID(ctx, *posting.CreatorID)
	if err != nil {
		return fmt.Errorf("failed to load posting creator: %w", err)
	}

	deletionToken, err := token.Generate()
	if err != nil {
		return err
	}

	if err := m.repo.SetDeletionToken(ctx, postingID, deletionToken); err != nil {
		return fmt.Errorf("failed to store deletion token: %w", err)
	}

	if err := m.mailer.SendDeletionLink(ctx, creator.Email, posting.JobTitle, deletionToken); err != nil {
		return fmt.Errorf("failed to send deletion link: %w", err)
	}

	slog.Info("deletion_requested", "posting_id", postingID, "user_id", sessionUserID)
	return nil
}

// ConfirmDeletion hard deletes the posting matching the token. Contact
// messages go with it via the storage cascade, and the token dies with
// the row. An unrecognized token reports an invalid link without any
// mutation.
func (m *Manager) ConfirmDeletion(ctx context.Context, deletionToken string) error {
	posting, err := m.repo.GetJobPostingByDeletionToken(ctx, deletionToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidDeletionLink
		}
		return err
	}

	if err := m.repo.DeleteJobPosting(ctx, posting.ID); err != nil {
		return fmt.Errorf("failed to delete posting: %w", err)
	}

	slog.Info("posting_deleted", "posting_id", posting.ID, "job_title", posting.JobTitle)
	return nil
}

// SweepResult summarizes one expiration sweep pass.
type SweepResult struct {
	Found      int
	Anonymized int
	Skipped    int
	Failed     int
}

// Sweep anonymizes expired postings: every posting past its expiration
// date that is still APPROVED or FLAGGED has its contact email cleared.
// Postings already anonymized are reported and skipped. A failure on
// one posting does not abort the pass. In dry-run mode the same
// selection and reporting happen without mutating.
func (m *Manager) Sweep(ctx context.Context, dryRun bool, out io.Writer) (SweepResult, error) {
	var result SweepResult
	now := m.now().UTC()

	expired, err := m.repo.ListExpiredJobPostings(ctx, now)
	if err != nil {
		return result, fmt.Errorf("failed to list expired postings: %w", err)
	}

	result.Found = len(expired)
	fmt.Fprintf(out, "Found %d expired job postings\n", result.Found)

	for _, posting := range expired {
		if posting.ContactEmail == nil {
			fmt.Fprintf(out, "Job posting already anonymized: %s (ID: %d)\n", posting.JobTitle, posting.ID)
			result.Skipped++
			continue
		}

		fmt.Fprintf(out, "Anonymizing job posting: %s (ID: %d)\n", posting.JobTitle, posting.ID)

		if !dryRun {
			if err := m.repo.AnonymizeJobPosting(ctx, posting.ID); err != nil {
				slog.Error("sweep_anonymize_failed", "posting_id", posting.ID, "error", err)
				result.Failed++
				continue
			}
		}
		result.Anonymized++
	}

	if dryRun {
		fmt.Fprintf(out, "DRY RUN: Would have anonymized %d job postings\n", result.Anonymized)
	} else {
		fmt.Fprintf(out, "Successfully anonymized %d job postings\n", result.Anonymized)
	}
	if result.Failed > 0 {
		fmt.Fprintf(out, "Failed to anonymize %d job postings\n", result.Failed)
	}

	return result, nil
}
