package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clubforms-backend/internal/domain"
	"clubforms-backend/internal/security"
)

// MockClubRepo
type MockClubRepo struct {
	mock.Mock
}

func (m *MockClubRepo) Create(ctx context.Context, club *domain.Club) error {
	args := m.Called(ctx, club)
	return args.Error(0)
}
func (m *MockClubRepo) GetByID(ctx context.Context, id int64) (*domain.Club, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Club), args.Error(1)
}
func (m *MockClubRepo) GetByEmail(ctx context.Context, email string) (*domain.Club, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Club), args.Error(1)
}
func (m *MockClubRepo) List(ctx context.Context) ([]domain.Club, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Club), args.Error(1)
}

// MockEventRepo
type MockEventRepo struct {
	mock.Mock
}

func (m *MockEventRepo) Create(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
func (m *MockEventRepo) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}
func (m *MockEventRepo) List(ctx context.Context) ([]domain.Event, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Event), args.Error(1)
}
func (m *MockEventRepo) ListByClub(ctx context.Context, clubID int64) ([]domain.Event, error) {
	args := m.Called(ctx, clubID)
	return args.Get(0).([]domain.Event), args.Error(1)
}
func (m *MockEventRepo) ListEndedBefore(ctx context.Context, date string) ([]domain.Event, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]domain.Event), args.Error(1)
}

// MockFormRepo
type MockFormRepo struct {
	mock.Mock
}

func (m *MockFormRepo) Replace(ctx context.Context, def *domain.FormDefinition) error {
	args := m.Called(ctx, def)
	return args.Error(0)
}
func (m *MockFormRepo) GetByID(ctx context.Context, id int64) (*domain.FormDefinition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FormDefinition), args.Error(1)
}
func (m *MockFormRepo) GetCurrent(ctx context.Context, owner domain.Owner) (*domain.FormDefinition, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FormDefinition), args.Error(1)
}
func (m *MockFormRepo) ListOpen(ctx context.Context, kind domain.OwnerKind) ([]domain.FormDefinition, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).([]domain.FormDefinition), args.Error(1)
}
func (m *MockFormRepo) Close(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSubmissionRepo
type MockSubmissionRepo struct {
	mock.Mock
}

func (m *MockSubmissionRepo) Append(ctx context.Context, sub *domain.Submission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}
func (m *MockSubmissionRepo) CountByForm(ctx context.Context, formID int64) (int, error) {
	args := m.Called(ctx, formID)
	return args.Int(0), args.Error(1)
}
func (m *MockSubmissionRepo) ListByForm(ctx context.Context, formID int64) ([]domain.Submission, error) {
	args := m.Called(ctx, formID)
	return args.Get(0).([]domain.Submission), args.Error(1)
}
func (m *MockSubmissionRepo) DeleteByForm(ctx context.Context, formID int64) (int64, error) {
	args := m.Called(ctx, formID)
	return args.Get(0).(int64), args.Error(1)
}

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, payload any) error {
	args := m.Called(ctx, topic, payload)
	return args.Error(0)
}
func (m *MockPublisher) Close() {}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendSubmissionConfirmation(ctx context.Context, to, ownerName string) error {
	args := m.Called(ctx, to, ownerName)
	return args.Error(0)
}

// MockTokenManager
type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) GenerateAccessToken(clubID int64, email string) (string, error) {
	args := m.Called(clubID, email)
	return args.String(0), args.Error(1)
}
func (m *MockTokenManager) ValidateToken(tokenString string) (*security.ClubClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.ClubClaims), args.Error(1)
}
