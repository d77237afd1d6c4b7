package service

import (
	"context"

	"clubforms-backend/internal/domain"
	"clubforms-backend/internal/logger"
	"clubforms-backend/internal/repository"
)

type directoryService struct {
	clubRepo  repository.ClubRepository
	eventRepo repository.EventRepository
	formSvc   FormService
}

func NewDirectoryService(clubRepo repository.ClubRepository, eventRepo repository.EventRepository, formSvc FormService) DirectoryService {
	return &directoryService{clubRepo: clubRepo, eventRepo: eventRepo, formSvc: formSvc}
}

func (s *directoryService) ListClubs(ctx context.Context) ([]domain.Club, error) {
	clubs, err := s.clubRepo.List(ctx)
	if clubs == nil && err == nil {
		clubs = []domain.Club{}
	}
	return clubs, err
}

func (s *directoryService) GetClub(ctx context.Context, id int64) (*domain.Club, error) {
	return s.clubRepo.GetByID(ctx, id)
}

func (s *directoryService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	events, err := s.eventRepo.List(ctx)
	if events == nil && err == nil {
		events = []domain.Event{}
	}
	return events, err
}

func (s *directoryService) ListClubEvents(ctx context.Context, clubID int64) ([]domain.Event, error) {
	if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		return nil, err
	}
	events, err := s.eventRepo.ListByClub(ctx, clubID)
	if events == nil && err == nil {
		events = []domain.Event{}
	}
	return events, err
}

func (s *directoryService) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	return s.eventRepo.GetByID(ctx, id)
}

func (s *directoryService) CreateEvent(ctx context.Context, event *domain.Event, fields []domain.FieldSchema, capacity *int) (*domain.FormDefinition, error) {
	logger.EnterMethod("directoryService.CreateEvent", "clubID", event.ClubID, "fields", len(fields))

	if err := event.Validate(); err != nil {
		return nil, err
	}
	// The schema is checked before the event row exists; the owner here
	// only needs a valid kind and a positive id.
	if len(fields) > 0 || capacity != nil {
		if _, err := domain.NewFormDefinition(domain.Owner{Kind: domain.OwnerKindEvent, ID: event.ClubID}, fields, capacity); err != nil {
			return nil, err
		}
	}
	if _, err := s.clubRepo.GetByID(ctx, event.ClubID); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		logger.ExitMethodWithError("directoryService.CreateEvent", err, "clubID", event.ClubID)
		return nil, err
	}
	if len(fields) == 0 {
		logger.ExitMethod("directoryService.CreateEvent", "eventID", event.ID)
		return nil, nil
	}

	def, err := s.formSvc.Create(ctx, domain.Owner{Kind: domain.OwnerKindEvent, ID: event.ID}, fields, capacity)
	if err != nil {
		logger.ExitMethodWithError("directoryService.CreateEvent", err, "eventID", event.ID)
		return nil, err
	}
	logger.ExitMethod("directoryService.CreateEvent", "eventID", event.ID, "formID", def.ID)
	return def, nil
}

func (s *directoryService) OwnerName(ctx context.Context, owner domain.Owner) (string, error) {
	if owner.Kind == domain.OwnerKindClub {
		club, err := s.clubRepo.GetByID(ctx, owner.ID)
		if err != nil {
			return "", err
		}
		return club.Name, nil
	}
	event, err := s.eventRepo.GetByID(ctx, owner.ID)
	if err != nil {
		return "", err
	}
	return event.Name, nil
}
