package service

import (
	"context"

	"clubforms-backend/internal/domain"
	"clubforms-backend/internal/export"
)

// FormState is the public status of an owner's form slot.
type FormState string

const (
	FormStateOpen   FormState = "open"
	FormStateClosed FormState = "closed"
	FormStateNone   FormState = "none"
)

type FormService interface {
	Create(ctx context.Context, owner domain.Owner, fields []domain.FieldSchema, capacity *int) (*domain.FormDefinition, error)
	Close(ctx context.Context, formID int64) error
	FieldsFor(ctx context.Context, owner domain.Owner) (*domain.FormDefinition, error)
	Get(ctx context.Context, formID int64) (*domain.FormDefinition, error)
	ListOpen(ctx context.Context, kind domain.OwnerKind) ([]domain.FormDefinition, error)
	Status(ctx context.Context, owner domain.Owner) (FormState, error)

	// AuthorizeOwner fails with ErrForbidden unless clubID administers owner.
	AuthorizeOwner(ctx context.Context, clubID int64, owner domain.Owner) error
	AuthorizeForm(ctx context.Context, clubID, formID int64) (*domain.FormDefinition, error)
}

type SubmissionService interface {
	// Submit accepts values for the form. expectedVersion is the version the
	// client rendered; 0 means the client did not send one.
	Submit(ctx context.Context, formID int64, expectedVersion int32, values map[string]string) (*domain.Submission, error)
	CountFor(ctx context.Context, formID int64) (int, error)
	ListFor(ctx context.Context, formID int64) ([]domain.Submission, error)
	Purge(ctx context.Context, formID int64) (int64, error)
}

type ExportService interface {
	Table(ctx context.Context, formID int64) (*export.Table, error)
	// CSV returns the attachment filename and body.
	CSV(ctx context.Context, formID int64) (string, []byte, error)
}

type DirectoryService interface {
	ListClubs(ctx context.Context) ([]domain.Club, error)
	GetClub(ctx context.Context, id int64) (*domain.Club, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	ListClubEvents(ctx context.Context, clubID int64) ([]domain.Event, error)
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
	// CreateEvent stores the event and, when fields are given, opens its
	// registration form.
	CreateEvent(ctx context.Context, event *domain.Event, fields []domain.FieldSchema, capacity *int) (*domain.FormDefinition, error)
	// OwnerName is the club or event name shown on pages and exports.
	OwnerName(ctx context.Context, owner domain.Owner) (string, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.Club, error)
	RegisterClub(ctx context.Context, club *domain.Club, password string) error
}

type EmailService interface {
	SendSubmissionConfirmation(ctx context.Context, to, ownerName string) error
}
