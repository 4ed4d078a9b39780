// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"codeberg.org/waap/waap/internal/models"
	"codeberg.org/waap/waap/internal/repository"
	"codeberg.org/waap/waap/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateJobPosting_Defaults(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	dept := testutil.NewTestDepartment(t, repo, "Transport Canada")

	posting := testutil.NewTestPosting(t, repo, dept.ID, func(p *models.JobPosting) {
		p.ExpirationDate = time.Time{}
	})

	assert.NotZero(t, posting.ID)
	assert.Equal(t, models.ModerationApproved, posting.ModerationStatus)
	assert.WithinDuration(t, posting.PostingDate.Add(models.DefaultPostingDuration), posting.ExpirationDate, time.Second)
}

func TestGetJobPosting_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetJobPosting(context.Background(), 12345)

	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestListPublicJobPostings(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	dept := testutil.NewTestDepartment(t, repo, "Transport Canada")
	now := time.Now().UTC()

	visible := testutil.NewTestPosting(t, repo, dept.ID)
	expired := testutil.NewTestPosting(t, repo, dept.ID, func(p *models.JobPosting) {
		p.ExpirationDate = now.Add(-time.Hour)
	})
	flagged := testutil.NewTestPosting(t, repo, dept.ID, func(p *models.JobPosting) {
		p.ModerationStatus = models.ModerationFlagged
	})

	postings, err := repo.ListPublicJobPostings(ctx, now, repository.PostingFilter{})

	require.NoError(t, err)
	require.Len(t, postings, 1)
	assert.Equal(t, visible.ID, postings[0].ID)
	assert.NotEqual(t, expired.ID, postings[0].ID)
	assert.NotEqual(t, flagged.ID, postings[0].ID)
}

func TestListPublicJobPostings_Filters(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	transport := testutil.NewTestDepartment(t, repo, "Transport Canada")
	health := testutil.NewTestDepartment(t, repo, "Health Canada")
	now := time.Now().UTC()

	match := testutil.NewTestPosting(t, repo, transport.ID, func(p *models.JobPosting) {
		p.Classification = models.ClassificationTemporary
		p.LanguageProfile = models.LanguageFrench
	})
	testutil.NewTestPosting(t, repo, health.ID)

	postings, err := repo.ListPublicJobPostings(ctx, now, repository.PostingFilter{
		DepartmentID:    transport.ID,
		Classification:  "temporary",
		LanguageProfile: "french",
	})

	require.NoError(t, err)
	require.Len(t, postings, 1)
	assert.Equal(t, match.ID, postings[0].ID)
}

func TestListExpiredJobPostings(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	dept := testutil.NewTestDepartment(t, repo, "Transport Canada")
	now := time.Now().UTC()

	expiredApproved := testutil.NewTestPosting(t, repo, dept.ID, func(p *models.JobPosting) {
		p.ExpirationDate = now.Add(-time.Hour)
	})
	expiredFlagged := testutil.NewTestPosting(t, repo, dept.ID, func(p *models.JobPosting) {
		p.ExpirationDate = now.Add(-time.Hour)
		p.ModerationStatus = models.ModerationFlagged
	})
	// Suppressed and active postings are not candidates.
	testutil.NewTestPosting(t, repo, dept.ID, func(p *models.JobPosting) {
		p.ExpirationDate = now.Add(-time.Hour)
		p.ModerationStatus = models.ModerationRemoved
	})
	testutil.NewTestPosting(t, repo, dept.ID)

	expired, err := repo.ListExpiredJobPostings(ctx, now)

	require.NoError(t, err)
	require.Len(t, expired, 2)
	assert.Equal(t, expiredApproved.ID, expired[0].ID)
	assert.Equal(t, expiredFlagged.ID, expired[1].ID)
}

func TestAnonymizeJobPosting(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	dept := testutil.NewTestDepartment(t, repo, "Transport Canada")

	posting := testutil.NewTestPosting(t, repo, dept.ID)
	require.NotNil(t, posting.ContactEmail)

	require.NoError(t, repo.AnonymizeJobPosting(ctx, posting.ID))

	got, err := repo.GetJobPosting(ctx, posting.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ContactEmail)
	assert.Equal(t, posting.JobTitle, got.JobTitle)
}

func TestSetModerationStatus(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	dept := testutil.NewTestDepartment(t, repo, "Transport Canada")

	posting := testutil.NewTestPosting(t, repo, dept.ID)
	when := time.Now().UTC()

	require.NoError(t, repo.SetModerationStatus(ctx, posting.ID, models.ModerationFlagged, "admin@tbs-sct.gc.ca", when))

	got, err := repo.GetJobPosting(ctx, posting.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ModerationFlagged, got.ModerationStatus)
	require.NotNil(t, got.ModeratedBy)
	assert.Equal(t, "admin@tbs-sct.gc.ca", *got.ModeratedBy)
	require.NotNil(t, got.ModerationDate)
}

func TestGetJobPostingByDeletionToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	dept := testutil.NewTestDepartment(t, repo, "Transport Canada")

	posting := testutil.NewTestPosting(t, repo, dept.ID)
	require.NoError(t, repo.SetDeletionToken(ctx, posting.ID, "del-tok"))

	got, err := repo.GetJobPostingByDeletionToken(ctx, "del-tok")
	require.NoError(t, err)
	assert.Equal(t, posting.ID, got.ID)

	_, err = repo.GetJobPostingByDeletionToken(ctx, "wrong-tok")
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestDeleteJobPosting_CascadesContactMessages(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	dept := testutil.NewTestDepartment(t, repo, "Transport Canada")

	posting := testutil.NewTestPosting(t, repo, dept.ID)
	msg := &models.ContactMessage{
		PublicID:        "11111111-1111-1111-1111-111111111111",
		JobPostingID:    posting.ID,
		SenderName:      "Sam",
		SenderEmail:     "sam@example.gc.ca",
		SenderEmailHash: models.HashEmail("sam@example.gc.ca"),
		Message:         "Interested in alternation.",
	}
	msg, err := repo.CreateContactMessage(ctx, msg)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteJobPosting(ctx, posting.ID))

	_, err = repo.GetJobPosting(ctx, posting.ID)
	assert.True(t, errors.Is(err, repository.ErrNotFound))

	_, err = repo.GetContactMessage(ctx, msg.ID)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestDeleteUser_KeepsPosting(t *testing.T) {
	db, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	dept := testutil.NewTestDepartment(t, repo, "Transport Canada")
	user := testutil.NewTestUser(t, repo, "creator@example.gc.ca")

	posting := testutil.NewTestPosting(t, repo, dept.ID, func(p *models.JobPosting) {
		p.CreatorID = &user.ID
	})

	_, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, user.ID)
	require.NoError(t, err)

	got, err := repo.GetJobPosting(ctx, posting.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CreatorID)
}
