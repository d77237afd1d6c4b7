package repository

import (
	"context"

	"clubforms-backend/internal/domain"
)

type ClubRepository interface {
	Create(ctx context.Context, club *domain.Club) error
	GetByID(ctx context.Context, id int64) (*domain.Club, error)
	GetByEmail(ctx context.Context, email string) (*domain.Club, error)
	List(ctx context.Context) ([]domain.Club, error)
}

type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	List(ctx context.Context) ([]domain.Event, error)
	ListByClub(ctx context.Context, clubID int64) ([]domain.Event, error)
	// ListEndedBefore returns events dated strictly before date (YYYY-MM-DD).
	ListEndedBefore(ctx context.Context, date string) ([]domain.Event, error)
}

type FormRepository interface {
	// Replace supersedes the owner's current form, if any, and inserts def as
	// the owner's new current form with the next version number.
	Replace(ctx context.Context, def *domain.FormDefinition) error
	GetByID(ctx context.Context, id int64) (*domain.FormDefinition, error)
	// GetCurrent returns the owner's non-superseded form, open or closed.
	GetCurrent(ctx context.Context, owner domain.Owner) (*domain.FormDefinition, error)
	ListOpen(ctx context.Context, kind domain.OwnerKind) ([]domain.FormDefinition, error)
	// Close is idempotent; it only returns ErrNotFound for unknown ids.
	Close(ctx context.Context, id int64) error
}

type SubmissionRepository interface {
	// Append stores sub for the form atomically with the acceptance checks:
	// the form must be open, not superseded, at sub.FormVersion and below
	// capacity. On success sub.ID and sub.SubmittedAt are set.
	Append(ctx context.Context, sub *domain.Submission) error
	CountByForm(ctx context.Context, formID int64) (int, error)
	ListByForm(ctx context.Context, formID int64) ([]domain.Submission, error)
	DeleteByForm(ctx context.Context, formID int64) (int64, error)
}

// Store bundles every repository of one backend.
type Store struct {
	Clubs       ClubRepository
	Events      EventRepository
	Forms       FormRepository
	Submissions SubmissionRepository
}
