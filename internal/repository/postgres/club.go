package postgres

import (
	"context"
	"database/sql"
	"time"

	"clubforms-backend/internal/domain"
	"clubforms-backend/internal/repository"
)

type clubRepository struct {
	db *sql.DB
}

func NewClubRepository(db *sql.DB) repository.ClubRepository {
	return &clubRepository{db: db}
}

const clubColumns = `id, name, email, description, logo_image, password_hash, created_on`

func (r *clubRepository) Create(ctx context.Context, c *domain.Club) error {
	query := `INSERT INTO clubs (name, email, description, logo_image, password_hash, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	now := time.Now()
	c.CreatedOn = now.Format("2006-01-02")
	err := r.db.QueryRowContext(ctx, query, c.Name, c.Email, c.Description, c.LogoImage, c.PasswordHash, now).Scan(&c.ID)
	return mapErr(err)
}

func (r *clubRepository) GetByID(ctx context.Context, id int64) (*domain.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs WHERE id = $1`
	return scanClub(r.db.QueryRowContext(ctx, query, id))
}

func (r *clubRepository) GetByEmail(ctx context.Context, email string) (*domain.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs WHERE LOWER(email) = LOWER($1)`
	return scanClub(r.db.QueryRowContext(ctx, query, email))
}

func (r *clubRepository) List(ctx context.Context) ([]domain.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var clubs []domain.Club
	for rows.Next() {
		c, err := scanClub(rows)
		if err != nil {
			return nil, err
		}
		clubs = append(clubs, *c)
	}
	return clubs, mapErr(rows.Err())
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClub(s scanner) (*domain.Club, error) {
	c := &domain.Club{}
	var createdOn time.Time
	if err := s.Scan(&c.ID, &c.Name, &c.Email, &c.Description, &c.LogoImage, &c.PasswordHash, &createdOn); err != nil {
		return nil, mapErr(err)
	}
	c.CreatedOn = createdOn.Format("2006-01-02")
	return c, nil
}
