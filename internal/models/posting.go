// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// ModerationStatus is the administrator-controlled visibility state of
// a job posting. It is independent of the time-based activity check.
type ModerationStatus string

const (
	ModerationApproved      ModerationStatus = "APPROVED"
	ModerationFlagged       ModerationStatus = "FLAGGED"
	ModerationInappropriate ModerationStatus = "INAPPROPRIATE"
	ModerationRemoved       ModerationStatus = "REMOVED"
)

// moderationTransitions is the set of moderator-initiated edges. There
// are no automatic transitions; expiry is an orthogonal predicate.
var moderationTransitions = map[ModerationStatus][]ModerationStatus{
	ModerationApproved:      {ModerationFlagged, ModerationInappropriate, ModerationRemoved},
	ModerationFlagged:       {ModerationApproved, ModerationInappropriate, ModerationRemoved},
	ModerationInappropriate: {ModerationApproved, ModerationRemoved},
	ModerationRemoved:       {ModerationApproved},
}

// IsValid reports whether s is a known moderation status.
func (s ModerationStatus) IsValid() bool {
	_, ok := moderationTransitions[s]
	return ok
}

// CanTransitionTo reports whether a moderator may move a posting from s
// to the target status.
func (s ModerationStatus) CanTransitionTo(to ModerationStatus) bool {
	for _, allowed := range moderationTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Classification choices for a posting's employment type.
const (
	ClassificationPermanent = "PERMANENT"
	ClassificationTemporary = "TEMPORARY"
	ClassificationContract  = "CONTRACT"
	ClassificationCasual    = "CASUAL"
)

// Language profile choices.
const (
	LanguageEnglish          = "ENGLISH"
	LanguageFrench           = "FRENCH"
	LanguageBilingual        = "BILINGUAL"
	LanguageEnglishPreferred = "ENGLISH_PREFERRED"
	LanguageFrenchPreferred  = "FRENCH_PREFERRED"
)

// ClassificationChoices lists the valid employment types.
func ClassificationChoices() []string {
	return []string{ClassificationPermanent, ClassificationTemporary, ClassificationContract, ClassificationCasual}
}

// LanguageProfileChoices lists the valid language profiles.
func LanguageProfileChoices() []string {
	return []string{LanguageEnglish, LanguageFrench, LanguageBilingual, LanguageEnglishPreferred, LanguageFrenchPreferred}
}

// JobPosting is a posting on the board. ContactEmail is nulled by the
// expiration sweep once the posting lapses (anonymization); the posting
// row itself survives. DeletionToken is only present while a deletion
// awaits confirmation. Deleting a posting is a hard delete that
// cascades to its contact messages.
type JobPosting struct { //nolint:govet // fieldalignment: readability over optimization
	ID                  int64            `db:"id" json:"id"`
	JobTitle            string           `db:"job_title" json:"job_title"`
	DepartmentID        int64            `db:"department_id" json:"department_id"`
	Location            string           `db:"location" json:"location"`
	Classification      string           `db:"classification" json:"classification"`
	AlternationCriteria string           `db:"alternation_criteria" json:"alternation_criteria"`
	LanguageProfile     string           `db:"language_profile" json:"language_profile"`
	ContactEmail        *string          `db:"contact_email" json:"contact_email"`
	CreatorID           *int64           `db:"creator_id" json:"creator_id"`
	PostingDate         time.Time        `db:"posting_date" json:"posting_date"`
	ExpirationDate      time.Time        `db:"expiration_date" json:"expiration_date"`
	ModerationStatus    ModerationStatus `db:"moderation_status" json:"moderation_status"`
	ModerationDate      *time.Time       `db:"moderation_date" json:"moderation_date"`
	ModeratedBy         *string          `db:"moderated_by" json:"moderated_by"`
	DeletionToken       *string          `db:"deletion_token" json:"-"`
	CreatedAt           time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time        `db:"updated_at" json:"updated_at"`
}

// DefaultPostingDuration is how long a posting stays active when no
// explicit expiration date is given.
const DefaultPostingDuration = 30 * 24 * time.Hour

// Active reports whether the posting is still within its lifetime.
// Purely a function of now vs the expiration date; moderation status
// never changes it.
func (p *JobPosting) Active(now time.Time) bool {
	return !now.After(p.ExpirationDate)
}
