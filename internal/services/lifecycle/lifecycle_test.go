// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package lifecycle_test

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"codeberg.org/waap/waap/internal/models"
	"codeberg.org/waap/waap/internal/services/lifecycle"
	"codeberg.org/waap/waap/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModerate(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	manager := lifecycle.NewManager(repo, &testutil.RecorderMailer{})
	ctx := context.Background()
	dept := testutil.NewTestDepartment(t, repo, "Transport Canada")
	posting := testutil.NewTestPosting(t, repo, dept.ID)

	updated, err := manager.Moderate(ctx, posting.ID, models.ModerationFlagged, "admin@tbs-sct.gc.ca")

	require.NoError(t, err)
	assert.Equal(t, models.ModerationFlagged, updated.ModerationStatus)
	require.NotNil(t, updated.ModeratedBy)
	assert.Equal(t, "admin@tbs-sct.gc.ca", *updated.ModeratedBy)
}

func TestModerate_InvalidTransition(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	manager := lifecycle.NewManager(repo, &testutil.RecorderMailer{})
	ctx := context.Background()
	dept := testutil.NewTestDepartment(t, repo, "Transport Canada")
	posting := testutil.NewTestPosting(t, repo, dept.ID, func(p *models.JobPosting) {
		p.ModerationStatus = models.ModerationRemoved
	})

	_, err := manager.Moderate(ctx, posting.ID, models.ModerationFlagged, "admin@tbs-sct.gc.ca")

	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)

	// The posting is unchanged.
	got, err := repo.GetJobPosting(ctx, posting.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ModerationRemoved, got.ModerationStatus)
}

func TestModerate_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	manager := lifecycle.NewManager(repo, &testutil.RecorderMailer{})

	_, err := manager.Moderate(context.Background(), 12345, models.ModerationFlagged, "admin@tbs-sct.gc.ca")

	assert.ErrorIs(t, err, lifecycle.ErrPostingNotFound)
}

func TestRequestDeletion(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	mailer := &testutil.RecorderMailer{}
	manager := lifecycle.NewManager(repo, mailer)
	ctx := context.Background()
	dept := testutil.NewTestDepartment(t, repo, "Transport Canada")
	creator := testutil.NewCompleteUser(t, repo, "creator@example.gc.ca")
	posting := testutil.NewTestPosting(t, repo, dept.ID, func(p *models.JobPosting) {
		p.CreatorID = &creator.ID
	})

	err := manager.RequestDeletion(ctx, posting.ID, creator.ID)

	require.NoError(t, err)
	mail := mailer.Last(t)
	assert.Equal(t, "deletion", mail.Kind)
	assert.Equal(t, "creator@example.gc.ca", mail.To)
	assert.Equal(t, posting.JobTitle, mail.JobTitle)

	// The mailed token matches the stored one.
	got, err := repo.GetJobPostingByDeletionToken(ctx, mail.Token)
	require.NoError(t, err)
	assert.Equal(t, posting.ID, got.ID)
}

func TestRequestDeletion_NotOwner(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	mailer := &testutil.RecorderMailer{}
	manager := lifecycle.NewManager(repo, mailer)
	ctx := context.Background()
	dept := testutil.NewTestDepartment(t, repo, "Transport Canada")
	creator := testutil.NewTestUser(t, repo, "creator@example.gc.ca")
	other := testutil.NewTestUser(t, repo, "other@example.gc.ca")
	posting := testutil.NewTestPosting(t, repo, dept.ID, func(p *models.JobPosting) {
		p.CreatorID = &creator.ID
	})

	err := manager.RequestDeletion(ctx, posting.ID, other.ID)

	assert.ErrorIs(t, err, lifecycle.ErrNotOwner)
	assert.Empty(t, mailer.Mails)
}

func TestRequestDeletion_NoCreator(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	manager := lifecycle.NewManager(repo, &testutil.RecorderMailer{})
	ctx := context.Background()
	dept := testutil.NewTestDepartment(t, repo, "Transport Canada")
	posting := testutil.NewTestPosting(t, repo, dept.ID)
	user := testutil.NewTestUser(t, repo, "anyone@example.gc.ca")

	err := manager.RequestDeletion(ctx, posting.ID, user.ID)

	assert.ErrorIs(t, err, lifecycle.ErrNotOwner)
}

func TestConfirmDeletion(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	mailer := &testutil.RecorderMailer{}
	manager := lifecycle.NewManager(repo, mailer)
	ctx := context.Background()
	dept := testutil.NewTestDepartment(t, repo, "Transport Canada")
	creator := testutil.NewTestUser(t, repo, "creator@example.gc.ca")
	posting := testutil.NewTestPosting(t, repo, dept.ID, func(p *models.JobPosting) {
		p.CreatorID = &creator.ID
	})

	require.NoError(t, manager.RequestDeletion(ctx, posting.ID, creator.ID))

	err := manager.ConfirmDeletion(ctx, mailer.Last(t).Token)
	require.NoError(t, err)

	_, err = repo.GetJobPosting(ctx, posting.ID)
	assert.Error(t, err)
}

func TestConfirmDeletion_InvalidToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	manager := lifecycle.NewManager(repo, &testutil.RecorderMailer{})

	err := manager.ConfirmDeletion(context.Background(), "no-such-token")

	assert.ErrorIs(t, err, lifecycle.ErrInvalidDeletionLink)
}

func TestSweep(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	manager := lifecycle.NewManager(repo, &testutil.RecorderMailer{})
	ctx := context.Background()
	dept := testutil.NewTestDepartment(t, repo, "Transport Canada")
	now := time.Now().UTC()

	expired := testutil.NewTestPosting(t, repo, dept.ID, func(p *models.JobPosting) {
		p.JobTitle = "Policy Analyst"
		p.ExpirationDate = now.Add(-time.Hour)
	})
	alreadyDone := testutil.NewTestPosting(t, repo, dept.ID, func(p *models.JobPosting) {
		p.JobTitle = "Data Analyst"
		p.ExpirationDate = now.Add(-time.Hour)
		p.ContactEmail = nil
	})
	active := testutil.NewTestPosting(t, repo, dept.ID)

	var out strings.Builder
	result, err := manager.Sweep(ctx, false, &out)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Found)
	assert.Equal(t, 1, result.Anonymized)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Failed)

	assert.Contains(t, out.String(), "Found 2 expired job postings")
	assert.Contains(t, out.String(), "Anonymizing job posting: Policy Analyst (ID: "+itoa(expired.ID)+")")
	assert.Contains(t, out.String(), "Job posting already anonymized: Data Analyst (ID: "+itoa(alreadyDone.ID)+")")
	assert.Contains(t, out.String(), "Successfully anonymized 1 job postings")

	got, err := repo.GetJobPosting(ctx, expired.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ContactEmail)

	untouched, err := repo.GetJobPosting(ctx, active.ID)
	require.NoError(t, err)
	assert.NotNil(t, untouched.ContactEmail)
}

func TestSweep_DryRun(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	manager := lifecycle.NewManager(repo, &testutil.RecorderMailer{})
	ctx := context.Background()
	dept := testutil.NewTestDepartment(t, repo, "Transport Canada")

	expired := testutil.NewTestPosting(t, repo, dept.ID, func(p *models.JobPosting) {
		p.ExpirationDate = time.Now().UTC().Add(-time.Hour)
	})

	var out strings.Builder
	result, err := manager.Sweep(ctx, true, &out)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Anonymized)
	assert.Contains(t, out.String(), "DRY RUN: Would have anonymized 1 job postings")

	// Nothing was changed.
	got, err := repo.GetJobPosting(ctx, expired.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.ContactEmail)
}

func TestSweep_Empty(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	manager := lifecycle.NewManager(repo, &testutil.RecorderMailer{})

	var out strings.Builder
	result, err := manager.Sweep(context.Background(), false, &out)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Found)
	assert.Contains(t, out.String(), "Found 0 expired job postings")
	assert.Contains(t, out.String(), "Successfully anonymized 0 job postings")
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
