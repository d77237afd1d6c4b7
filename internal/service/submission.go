package service

import (
	"context"

	"clubforms-backend/internal/domain"
	"clubforms-backend/internal/events"
	"clubforms-backend/internal/logger"
	"clubforms-backend/internal/render"
	"clubforms-backend/internal/repository"
)

type submissionService struct {
	formRepo  repository.FormRepository
	subRepo   repository.SubmissionRepository
	directory DirectoryService
	emailSvc  EmailService
	publisher events.Publisher
}

func NewSubmissionService(
	formRepo repository.FormRepository,
	subRepo repository.SubmissionRepository,
	directory DirectoryService,
	emailSvc EmailService,
	publisher events.Publisher,
) SubmissionService {
	return &submissionService{
		formRepo:  formRepo,
		subRepo:   subRepo,
		directory: directory,
		emailSvc:  emailSvc,
		publisher: publisher,
	}
}

// Submit checks the form state and capacity up front so callers get the
// most specific error, validates against the live definition and then
// appends. The append repeats the state and capacity checks under the
// form's lock; the early checks only order the errors.
func (s *submissionService) Submit(ctx context.Context, formID int64, expectedVersion int32, raw map[string]string) (*domain.Submission, error) {
	logger.EnterMethod("submissionService.Submit", "formID", formID, "expectedVersion", expectedVersion)

	def, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		logger.ExitMethodWithError("submissionService.Submit", err, "formID", formID)
		return nil, err
	}
	if def.Superseded || (expectedVersion != 0 && expectedVersion != def.Version) {
		logger.ExitMethod("submissionService.Submit", "formID", formID, "result", "stale")
		return nil, domain.ErrStaleSchema
	}
	if def.Status == domain.FormStatusClosed {
		logger.ExitMethod("submissionService.Submit", "formID", formID, "result", "closed")
		return nil, domain.ErrFormClosed
	}
	if def.Capacity != nil {
		count, err := s.subRepo.CountByForm(ctx, formID)
		if err != nil {
			return nil, err
		}
		if !def.HasRoom(count) {
			logger.ExitMethod("submissionService.Submit", "formID", formID, "result", "capacity_reached")
			return nil, domain.ErrCapacityReached
		}
	}

	values, err := render.Validate(def, raw)
	if err != nil {
		logger.ExitMethod("submissionService.Submit", "formID", formID, "result", "invalid")
		return nil, err
	}

	sub := &domain.Submission{FormID: formID, FormVersion: def.Version, Values: values}
	if err := s.subRepo.Append(ctx, sub); err != nil {
		logger.ExitMethodWithError("submissionService.Submit", err, "formID", formID)
		return nil, err
	}

	s.afterAccept(ctx, def, sub)
	logger.ExitMethod("submissionService.Submit", "formID", formID, "submissionID", sub.ID)
	return sub, nil
}

// afterAccept runs the best-effort side effects of an accepted submission.
// Failures are logged and never undo the submission.
func (s *submissionService) afterAccept(ctx context.Context, def *domain.FormDefinition, sub *domain.Submission) {
	count, err := s.subRepo.CountByForm(ctx, def.ID)
	if err != nil {
		count = -1
	}
	if err := s.publisher.Publish(ctx, events.TopicSubmissionAccepted, events.SubmissionEvent{
		FormID:       def.ID,
		SubmissionID: sub.ID,
		FormVersion:  sub.FormVersion,
		Count:        count,
		SubmittedAt:  sub.SubmittedAt,
	}); err != nil {
		logger.Warn("Failed to publish submission event", "formID", def.ID, "error", err)
	}

	to := confirmationAddress(def, sub)
	if to == "" {
		return
	}
	name, err := s.directory.OwnerName(ctx, def.Owner)
	if err != nil {
		logger.Warn("Skipping confirmation email", "formID", def.ID, "error", err)
		return
	}
	if err := s.emailSvc.SendSubmissionConfirmation(ctx, to, name); err != nil {
		logger.Warn("Failed to send confirmation email", "formID", def.ID, "submissionID", sub.ID, "error", err)
	}
}

// confirmationAddress is the answer to the first email field.
func confirmationAddress(def *domain.FormDefinition, sub *domain.Submission) string {
	for _, f := range def.Fields {
		if f.Type == domain.FieldTypeEmail && sub.Values[f.Name] != "" {
			return sub.Values[f.Name]
		}
	}
	return ""
}

func (s *submissionService) CountFor(ctx context.Context, formID int64) (int, error) {
	if _, err := s.formRepo.GetByID(ctx, formID); err != nil {
		return 0, err
	}
	return s.subRepo.CountByForm(ctx, formID)
}

func (s *submissionService) ListFor(ctx context.Context, formID int64) ([]domain.Submission, error) {
	if _, err := s.formRepo.GetByID(ctx, formID); err != nil {
		return nil, err
	}
	subs, err := s.subRepo.ListByForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []domain.Submission{}
	}
	return subs, nil
}

// Purge deletes every submission of the form. It is the only path that
// removes submissions.
func (s *submissionService) Purge(ctx context.Context, formID int64) (int64, error) {
	if _, err := s.formRepo.GetByID(ctx, formID); err != nil {
		return 0, err
	}
	n, err := s.subRepo.DeleteByForm(ctx, formID)
	if err != nil {
		return 0, err
	}
	logger.Info("Submissions purged", "formID", formID, "deleted", n)
	return n, nil
}
