// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"codeberg.org/waap/waap/internal/repository"
	"codeberg.org/waap/waap/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOneTimeToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	tok, err := repo.CreateOneTimeToken(ctx, "tok-abc", "user@example.gc.ca", now, now.Add(time.Hour))

	require.NoError(t, err)
	assert.NotZero(t, tok.ID)
	assert.Equal(t, "user@example.gc.ca", tok.Email)
	assert.False(t, tok.IsUsed)
}

func TestCreateOneTimeToken_DuplicateToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := repo.CreateOneTimeToken(ctx, "tok-dup", "a@example.gc.ca", now, now.Add(time.Hour))
	require.NoError(t, err)

	_, err = repo.CreateOneTimeToken(ctx, "tok-dup", "b@example.gc.ca", now, now.Add(time.Hour))

	require.Error(t, err)
	assert.True(t, repository.IsUniqueViolation(err))
}

func TestGetOneTimeToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := repo.CreateOneTimeToken(ctx, "tok-get", "user@example.gc.ca", now, now.Add(time.Hour))
	require.NoError(t, err)

	tok, err := repo.GetOneTimeToken(ctx, "tok-get")

	require.NoError(t, err)
	assert.Equal(t, "user@example.gc.ca", tok.Email)
}

func TestGetOneTimeToken_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetOneTimeToken(context.Background(), "no-such-token")

	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestMarkTokenUsed(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := repo.CreateOneTimeToken(ctx, "tok-use", "user@example.gc.ca", now, now.Add(time.Hour))
	require.NoError(t, err)

	won, err := repo.MarkTokenUsed(ctx, "tok-use")
	require.NoError(t, err)
	assert.True(t, won)

	tok, err := repo.GetOneTimeToken(ctx, "tok-use")
	require.NoError(t, err)
	assert.True(t, tok.IsUsed)
}

func TestMarkTokenUsed_SecondCallLoses(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := repo.CreateOneTimeToken(ctx, "tok-race", "user@example.gc.ca", now, now.Add(time.Hour))
	require.NoError(t, err)

	won, err := repo.MarkTokenUsed(ctx, "tok-race")
	require.NoError(t, err)
	require.True(t, won)

	won, err = repo.MarkTokenUsed(ctx, "tok-race")
	require.NoError(t, err)
	assert.False(t, won)
}

func TestMarkTokenUsed_UnknownToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	won, err := repo.MarkTokenUsed(context.Background(), "no-such-token")

	require.NoError(t, err)
	assert.False(t, won)
}

func TestCountTokensForEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := repo.CreateOneTimeToken(ctx, "tok-1", "user@example.gc.ca", now, now.Add(time.Hour))
	require.NoError(t, err)
	_, err = repo.CreateOneTimeToken(ctx, "tok-2", "user@example.gc.ca", now, now.Add(time.Hour))
	require.NoError(t, err)

	count, err := repo.CountTokensForEmail(ctx, "user@example.gc.ca")

	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}
