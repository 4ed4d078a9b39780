// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package identity_test

import (
	"context"
	"errors"
	"testing"

	"codeberg.org/waap/waap/internal/services/identity"
	"codeberg.org/waap/waap/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_NewEmailCreatesPlaceholder(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	resolver := identity.NewResolver(repo)
	ctx := context.Background()

	user, pending, err := resolver.Resolve(ctx, "new@example.gc.ca")

	require.NoError(t, err)
	assert.True(t, pending)
	assert.Equal(t, "new@example.gc.ca", user.Email)

	// Resolving again returns the same user, still pending.
	again, pending, err := resolver.Resolve(ctx, "new@example.gc.ca")
	require.NoError(t, err)
	assert.True(t, pending)
	assert.Equal(t, user.ID, again.ID)
}

func TestResolve_CompleteUserNotPending(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	resolver := identity.NewResolver(repo)

	testutil.NewCompleteUser(t, repo, "done@example.gc.ca")

	_, pending, err := resolver.Resolve(context.Background(), "done@example.gc.ca")

	require.NoError(t, err)
	assert.False(t, pending)
}

func TestCompleteProfile(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	resolver := identity.NewResolver(repo)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "reg@example.gc.ca")
	dept := testutil.NewTestDepartment(t, repo, "Health Canada")
	class := testutil.NewTestClassification(t, repo, "EC")

	updated, err := resolver.CompleteProfile(ctx, user.ID, identity.ProfileInput{
		FirstName:        "  Marie ",
		LastName:         "Leblanc",
		DepartmentID:     dept.ID,
		ClassificationID: class.ID,
		Level:            4,
	})

	require.NoError(t, err)
	assert.Equal(t, "Marie", updated.FirstName)
	assert.True(t, updated.ProfileComplete())
}

func TestCompleteProfile_ReportsAllFieldErrors(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	resolver := identity.NewResolver(repo)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "reg@example.gc.ca")

	_, err := resolver.CompleteProfile(ctx, user.ID, identity.ProfileInput{Level: 500})

	var verr *identity.ValidationError
	require.True(t, errors.As(err, &verr))
	fields := make([]string, len(verr.Fields))
	for i, f := range verr.Fields {
		fields[i] = f.Field
	}
	assert.ElementsMatch(t, []string{"first_name", "last_name", "department_id", "classification_id", "level"}, fields)
}

func TestCompleteProfile_UnknownLookups(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	resolver := identity.NewResolver(repo)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "reg@example.gc.ca")

	_, err := resolver.CompleteProfile(ctx, user.ID, identity.ProfileInput{
		FirstName:        "Marie",
		LastName:         "Leblanc",
		DepartmentID:     999,
		ClassificationID: 999,
		Level:            4,
	})

	var verr *identity.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 2)

	// Nothing was applied.
	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.ProfileComplete())
}
