// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"codeberg.org/waap/waap/internal/database"
	"codeberg.org/waap/waap/internal/models"
	"codeberg.org/waap/waap/internal/repository"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestUser creates a placeholder user, the state a first-time login
// leaves behind.
func NewTestUser(t *testing.T, repo *repository.Repository, email string) *models.User {
	t.Helper()
	user, err := repo.CreateUser(context.Background(), email)
	require.NoError(t, err)
	return user
}

// NewTestDepartment creates a department lookup row.
func NewTestDepartment(t *testing.T, repo *repository.Repository, name string) *models.Department {
	t.Helper()
	dept, _, err := repo.GetOrCreateDepartment(context.Background(), name)
	require.NoError(t, err)
	return dept
}

// NewTestClassification creates a classification lookup row.
func NewTestClassification(t *testing.T, repo *repository.Repository, name string) *models.Classification {
	t.Helper()
	class, _, err := repo.GetOrCreateClassification(context.Background(), name)
	require.NoError(t, err)
	return class
}

// NewCompleteUser creates a user with a filled-in profile, the state
// required for creating postings.
func NewCompleteUser(t *testing.T, repo *repository.Repository, email string) *models.User {
	t.Helper()
	ctx := context.Background()
	user := NewTestUser(t, repo, email)
	dept := NewTestDepartment(t, repo, "Treasury Board Secretariat")
	class := NewTestClassification(t, repo, "AS")
	require.NoError(t, repo.UpdateUserProfile(ctx, user.ID, "Alex", "Tremblay", dept.ID, class.ID, 3))
	user, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	return user
}

// NewTestPosting creates an approved, unexpired job posting. Mutators
// adjust the posting before insert; defaults are overridable that way.
func NewTestPosting(t *testing.T, repo *repository.Repository, departmentID int64, mutate ...func(*models.JobPosting)) *models.JobPosting {
	t.Helper()
	email := "hiring@example.gc.ca"
	posting := &models.JobPosting{
		JobTitle:            "Program Analyst",
		DepartmentID:        departmentID,
		Location:            "Ottawa, ON",
		Classification:      models.ClassificationPermanent,
		AlternationCriteria: "Open to alternation with indeterminate employees.",
		LanguageProfile:     models.LanguageBilingual,
		ContactEmail:        &email,
		ExpirationDate:      time.Now().UTC().Add(14 * 24 * time.Hour),
	}
	for _, m := range mutate {
		m(posting)
	}
	created, err := repo.CreateJobPosting(context.Background(), posting)
	require.NoError(t, err)
	return created
}

// RecordedMail captures one outgoing mail from the fake mailer.
type RecordedMail struct {
	Kind        string // login, deletion, contact
	To          string
	Token       string
	JobTitle    string
	SenderName  string
	SenderEmail string
	Message     string
}

// RecorderMailer is a fake mailer that records every send. Setting Err
// makes all sends fail, for exercising dispatch-failure paths.
type RecorderMailer struct {
	mu    sync.Mutex
	Err   error
	Mails []RecordedMail
}

func (m *RecorderMailer) SendLoginLink(_ context.Context, toEmail, token string) error {
	return m.record(RecordedMail{Kind: "login", To: toEmail, Token: token})
}

func (m *RecorderMailer) SendDeletionLink(_ context.Context, toEmail, jobTitle, token string) error {
	return m.record(RecordedMail{Kind: "deletion", To: toEmail, JobTitle: jobTitle, Token: token})
}

func (m *RecorderMailer) SendContactMessage(_ context.Context, toEmail, jobTitle, senderName, senderEmail, message string) error {
	return m.record(RecordedMail{
		Kind:        "contact",
		To:          toEmail,
		JobTitle:    jobTitle,
		SenderName:  senderName,
		SenderEmail: senderEmail,
		Message:     message,
	})
}

func (m *RecorderMailer) record(mail RecordedMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Mails = append(m.Mails, mail)
	return nil
}

// Last returns the most recently recorded mail.
func (m *RecorderMailer) Last(t *testing.T) RecordedMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.Mails)
	return m.Mails[len(m.Mails)-1]
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}
