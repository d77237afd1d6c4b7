package service

import (
	"context"

	"clubforms-backend/internal/export"
	"clubforms-backend/internal/repository"
)

type exportService struct {
	formRepo  repository.FormRepository
	subRepo   repository.SubmissionRepository
	directory DirectoryService
}

func NewExportService(formRepo repository.FormRepository, subRepo repository.SubmissionRepository, directory DirectoryService) ExportService {
	return &exportService{formRepo: formRepo, subRepo: subRepo, directory: directory}
}

func (s *exportService) Table(ctx context.Context, formID int64) (*export.Table, error) {
	def, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return nil, err
	}
	subs, err := s.subRepo.ListByForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	t := export.ToTable(def, subs)
	return &t, nil
}

func (s *exportService) CSV(ctx context.Context, formID int64) (string, []byte, error) {
	def, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return "", nil, err
	}
	subs, err := s.subRepo.ListByForm(ctx, formID)
	if err != nil {
		return "", nil, err
	}
	name, err := s.directory.OwnerName(ctx, def.Owner)
	if err != nil {
		return "", nil, err
	}
	data, err := export.ToCSV(export.ToTable(def, subs))
	if err != nil {
		return "", nil, err
	}
	return export.Filename(name, def.Owner.Kind), data, nil
}
