package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"clubforms-backend/internal/domain"
	"clubforms-backend/internal/repository"
	"clubforms-backend/internal/security"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type authService struct {
	clubRepo     repository.ClubRepository
	tokenManager security.TokenManager
}

func NewAuthService(clubRepo repository.ClubRepository, tokenManager security.TokenManager) AuthService {
	return &authService{clubRepo: clubRepo, tokenManager: tokenManager}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.Club, error) {
	club, err := s.clubRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(club.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokenManager.GenerateAccessToken(club.ID, club.Email)
	if err != nil {
		return "", nil, err
	}
	return token, club, nil
}

// RegisterClub creates the club with a bcrypt hash of password. It fails
// with a ValidationError when the email is already taken.
func (s *authService) RegisterClub(ctx context.Context, club *domain.Club, password string) error {
	ve := &domain.ValidationError{}
	if strings.TrimSpace(club.Name) == "" {
		ve.Add("name", "is required")
	}
	if strings.TrimSpace(club.Email) == "" {
		ve.Add("email", "is required")
	}
	if len(password) < 8 {
		ve.Add("password", "must be at least 8 characters")
	}
	if err := ve.OrNil(); err != nil {
		return err
	}

	_, err := s.clubRepo.GetByEmail(ctx, club.Email)
	switch {
	case err == nil:
		ve.Add("email", "is already registered")
		return ve
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	club.PasswordHash = string(hash)
	return s.clubRepo.Create(ctx, club)
}
