package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clubforms-backend/internal/domain"
	"clubforms-backend/internal/events"
	"clubforms-backend/internal/logger"
	"clubforms-backend/internal/repository"
)

type formService struct {
	clubRepo  repository.ClubRepository
	eventRepo repository.EventRepository
	formRepo  repository.FormRepository
	publisher events.Publisher
}

func NewFormService(
	clubRepo repository.ClubRepository,
	eventRepo repository.EventRepository,
	formRepo repository.FormRepository,
	publisher events.Publisher,
) FormService {
	return &formService{
		clubRepo:  clubRepo,
		eventRepo: eventRepo,
		formRepo:  formRepo,
		publisher: publisher,
	}
}

// Create validates the schema before touching storage, then replaces the
// owner's current form. The previous version keeps its submissions.
func (s *formService) Create(ctx context.Context, owner domain.Owner, fields []domain.FieldSchema, capacity *int) (*domain.FormDefinition, error) {
	logger.EnterMethod("formService.Create", "owner", owner.String(), "fields", len(fields))

	def, err := domain.NewFormDefinition(owner, fields, capacity)
	if err != nil {
		logger.ExitMethod("formService.Create", "result", "invalid")
		return nil, err
	}
	if err := s.ownerExists(ctx, owner); err != nil {
		logger.ExitMethodWithError("formService.Create", err, "owner", owner.String())
		return nil, err
	}
	if err := s.formRepo.Replace(ctx, def); err != nil {
		logger.ExitMethodWithError("formService.Create", err, "owner", owner.String())
		return nil, err
	}

	s.publish(ctx, events.TopicFormCreated, events.FormEvent{FormID: def.ID, Owner: owner, Version: def.Version, At: def.CreatedAt})
	logger.ExitMethod("formService.Create", "formID", def.ID, "version", def.Version)
	return def, nil
}

func (s *formService) Close(ctx context.Context, formID int64) error {
	def, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return err
	}
	if def.Status == domain.FormStatusClosed {
		return nil
	}
	if err := s.formRepo.Close(ctx, formID); err != nil {
		return err
	}
	logger.Info("Form closed", "formID", formID, "owner", def.Owner.String())
	s.publish(ctx, events.TopicFormClosed, events.FormEvent{FormID: formID, Owner: def.Owner, Version: def.Version, At: time.Now().UTC()})
	return nil
}

func (s *formService) FieldsFor(ctx context.Context, owner domain.Owner) (*domain.FormDefinition, error) {
	def, err := s.formRepo.GetCurrent(ctx, owner)
	if err != nil {
		return nil, err
	}
	if !def.IsOpen() {
		return nil, fmt.Errorf("no open form for %s: %w", owner, domain.ErrNotFound)
	}
	return def, nil
}

func (s *formService) Get(ctx context.Context, formID int64) (*domain.FormDefinition, error) {
	return s.formRepo.GetByID(ctx, formID)
}

func (s *formService) ListOpen(ctx context.Context, kind domain.OwnerKind) ([]domain.FormDefinition, error) {
	forms, err := s.formRepo.ListOpen(ctx, kind)
	if err != nil {
		return nil, err
	}
	if forms == nil {
		forms = []domain.FormDefinition{}
	}
	return forms, nil
}

func (s *formService) Status(ctx context.Context, owner domain.Owner) (FormState, error) {
	def, err := s.formRepo.GetCurrent(ctx, owner)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return FormStateNone, nil
	case err != nil:
		return "", err
	case def.IsOpen():
		return FormStateOpen, nil
	default:
		return FormStateClosed, nil
	}
}

func (s *formService) AuthorizeOwner(ctx context.Context, clubID int64, owner domain.Owner) error {
	switch owner.Kind {
	case domain.OwnerKindClub:
		if owner.ID != clubID {
			return domain.ErrForbidden
		}
		return nil
	case domain.OwnerKindEvent:
		event, err := s.eventRepo.GetByID(ctx, owner.ID)
		if err != nil {
			return err
		}
		if event.ClubID != clubID {
			return domain.ErrForbidden
		}
		return nil
	}
	return domain.ErrForbidden
}

func (s *formService) AuthorizeForm(ctx context.Context, clubID, formID int64) (*domain.FormDefinition, error) {
	def, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeOwner(ctx, clubID, def.Owner); err != nil {
		return nil, err
	}
	return def, nil
}

func (s *formService) ownerExists(ctx context.Context, owner domain.Owner) error {
	var err error
	if owner.Kind == domain.OwnerKindClub {
		_, err = s.clubRepo.GetByID(ctx, owner.ID)
	} else {
		_, err = s.eventRepo.GetByID(ctx, owner.ID)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s: %w", owner, domain.ErrNotFound)
	}
	return err
}

func (s *formService) publish(ctx context.Context, topic string, payload any) {
	if err := s.publisher.Publish(ctx, topic, payload); err != nil {
		logger.Warn("Failed to publish event", "topic", topic, "error", err)
	}
}
