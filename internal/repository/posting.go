// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"strings"
	"time"

	"codeberg.org/waap/waap/internal/models"
)

// CreateJobPosting persists a new posting and returns it with assigned ID.
func (r *Repository) CreateJobPosting(ctx context.Context, p *models.JobPosting) (*models.JobPosting, error) {
	now := time.Now().UTC()
	if p.PostingDate.IsZero() {
		p.PostingDate = now
	}
	if p.ExpirationDate.IsZero() {
		p.ExpirationDate = p.PostingDate.Add(models.DefaultPostingDuration)
	}
	if p.ModerationStatus == "" {
		p.ModerationStatus = models.ModerationApproved
	}
	if p.AlternationCriteria == "" {
		p.AlternationCriteria = "{}"
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO job_postings
		 (job_title, department_id, location, classification, alternation_criteria, language_profile,
		  contact_email, creator_id, posting_date, expiration_date, moderation_status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.JobTitle, p.DepartmentID, p.Location, p.Classification, p.AlternationCriteria, p.LanguageProfile,
		p.ContactEmail, p.CreatorID, p.PostingDate, p.ExpirationDate, p.ModerationStatus, now, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetJobPosting(ctx, id)
}

// GetJobPosting retrieves a posting by ID.
func (r *Repository) GetJobPosting(ctx context.Context, id int64) (*models.JobPosting, error) {
	var p models.JobPosting
	if err := r.db.GetContext(ctx, &p, `SELECT * FROM job_postings WHERE id = ?`, id); err != nil {
		return nil, wrapErr(err)
	}
	return &p, nil
}

// GetJobPostingByDeletionToken retrieves a posting by its pending
// deletion token.
func (r *Repository) GetJobPostingByDeletionToken(ctx context.Context, token string) (*models.JobPosting, error) {
	var p models.JobPosting
	if err := r.db.GetContext(ctx, &p, `SELECT * FROM job_postings WHERE deletion_token = ?`, token); err != nil {
		return nil, wrapErr(err)
	}
	return &p, nil
}

// PostingFilter narrows the public listing.
type PostingFilter struct {
	DepartmentID    int64
	Classification  string
	LanguageProfile string
}

// ListPublicJobPostings returns approved, unexpired postings for the
// public browse page, newest first, optionally filtered.
func (r *Repository) ListPublicJobPostings(ctx context.Context, now time.Time, filter PostingFilter) ([]models.JobPosting, error) {
	query := `SELECT * FROM job_postings WHERE moderation_status = ? AND expiration_date >= ?`
	args := []any{models.ModerationApproved, now}

	if filter.DepartmentID != 0 {
		query += ` AND department_id = ?`
		args = append(args, filter.DepartmentID)
	}
	if filter.Classification != "" {
		query += ` AND classification = ?`
		args = append(args, strings.ToUpper(filter.Classification))
	}
	if filter.LanguageProfile != "" {
		query += ` AND language_profile = ?`
		args = append(args, strings.ToUpper(filter.LanguageProfile))
	}
	query += ` ORDER BY posting_date DESC`

	var postings []models.JobPosting
	if err := r.db.SelectContext(ctx, &postings, query, args...); err != nil {
		return nil, err
	}
	return postings, nil
}

// ListExpiredJobPostings selects anonymization candidates: postings
// past their expiration date that are still APPROVED or FLAGGED.
// Postings already suppressed by moderation are excluded.
func (r *Repository) ListExpiredJobPostings(ctx context.Context, now time.Time) ([]models.JobPosting, error) {
	var postings []models.JobPosting
	err := r.db.SelectContext(ctx, &postings,
		`SELECT * FROM job_postings
		 WHERE expiration_date < ? AND moderation_status IN (?, ?)
		 ORDER BY id`,
		now, models.ModerationApproved, models.ModerationFlagged)
	if err != nil {
		return nil, err
	}
	return postings, nil
}

// AnonymizeJobPosting irreversibly clears the posting's contact email.
// A single-column update against the primary key row, safe to run
// concurrently with public reads.
func (r *Repository) AnonymizeJobPosting(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE job_postings SET contact_email = NULL, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	return err
}

// SetModerationStatus records a moderator decision.
func (r *Repository) SetModerationStatus(ctx context.Context, id int64, status models.ModerationStatus, actor string, when time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE job_postings
		 SET moderation_status = ?, moderation_date = ?, moderated_by = ?, updated_at = ?
		 WHERE id = ?`,
		status, when, actor, time.Now().UTC(), id)
	return err
}

// SetDeletionToken stores the pending deletion token for a posting.
func (r *Repository) SetDeletionToken(ctx context.Context, id int64, token string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE job_postings SET deletion_token = ?, updated_at = ? WHERE id = ?`,
		token, time.Now().UTC(), id)
	return err
}

// DeleteJobPosting hard deletes a posting. Contact messages are removed
// by the FOREIGN KEY cascade.
func (r *Repository) DeleteJobPosting(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM job_postings WHERE id = ?`, id)
	return err
}

// CountJobPostings returns the total number of postings.
func (r *Repository) CountJobPostings(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT count(*) FROM job_postings`)
	return count, err
}
