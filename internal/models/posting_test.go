// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models_test

import (
	"testing"
	"time"

	"codeberg.org/waap/waap/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestModerationStatusIsValid(t *testing.T) {
	assert.True(t, models.ModerationApproved.IsValid())
	assert.True(t, models.ModerationFlagged.IsValid())
	assert.True(t, models.ModerationInappropriate.IsValid())
	assert.True(t, models.ModerationRemoved.IsValid())
	assert.False(t, models.ModerationStatus("PENDING").IsValid())
	assert.False(t, models.ModerationStatus("").IsValid())
}

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to models.ModerationStatus
		allowed  bool
	}{
		{models.ModerationApproved, models.ModerationFlagged, true},
		{models.ModerationApproved, models.ModerationInappropriate, true},
		{models.ModerationApproved, models.ModerationRemoved, true},
		{models.ModerationApproved, models.ModerationApproved, false},
		{models.ModerationFlagged, models.ModerationApproved, true},
		{models.ModerationFlagged, models.ModerationInappropriate, true},
		{models.ModerationFlagged, models.ModerationRemoved, true},
		{models.ModerationInappropriate, models.ModerationApproved, true},
		{models.ModerationInappropriate, models.ModerationRemoved, true},
		{models.ModerationInappropriate, models.ModerationFlagged, false},
		{models.ModerationRemoved, models.ModerationApproved, true},
		{models.ModerationRemoved, models.ModerationFlagged, false},
		{models.ModerationRemoved, models.ModerationInappropriate, false},
	}

	for _, tc := range cases {
		got := tc.from.CanTransitionTo(tc.to)
		assert.Equal(t, tc.allowed, got, "%s -> %s", tc.from, tc.to)
	}
}

func TestJobPostingActive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	active := &models.JobPosting{ExpirationDate: now.Add(24 * time.Hour)}
	assert.True(t, active.Active(now))

	// Expiration day itself still counts as active.
	boundary := &models.JobPosting{ExpirationDate: now}
	assert.True(t, boundary.Active(now))

	expired := &models.JobPosting{ExpirationDate: now.Add(-time.Minute)}
	assert.False(t, expired.Active(now))
}

func TestJobPostingActive_IgnoresModeration(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	posting := &models.JobPosting{
		ExpirationDate:   now.Add(24 * time.Hour),
		ModerationStatus: models.ModerationRemoved,
	}

	assert.True(t, posting.Active(now))
}
