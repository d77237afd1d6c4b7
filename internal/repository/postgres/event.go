package postgres

import (
	"context"
	"database/sql"
	"time"

	"clubforms-backend/internal/domain"
	"clubforms-backend/internal/repository"
)

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) repository.EventRepository {
	return &eventRepository{db: db}
}

const eventSelect = `SELECT e.id, e.club_id, c.name, e.name, e.description, e.image, e.event_date, e.event_time, e.venue, e.created_on
	FROM events e JOIN clubs c ON c.id = e.club_id`

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `INSERT INTO events (club_id, name, description, image, event_date, event_time, venue, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	now := time.Now()
	e.CreatedOn = now.Format("2006-01-02")
	err := r.db.QueryRowContext(ctx, query, e.ClubID, e.Name, e.Description, e.Image, e.Date, e.Time, e.Venue, now).Scan(&e.ID)
	return mapErr(err)
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	row := r.db.QueryRowContext(ctx, eventSelect+` WHERE e.id = $1`, id)
	return scanEvent(row)
}

func (r *eventRepository) List(ctx context.Context) ([]domain.Event, error) {
	return r.list(ctx, eventSelect+` ORDER BY e.event_date, e.id`)
}

func (r *eventRepository) ListByClub(ctx context.Context, clubID int64) ([]domain.Event, error) {
	return r.list(ctx, eventSelect+` WHERE e.club_id = $1 ORDER BY e.event_date, e.id`, clubID)
}

func (r *eventRepository) ListEndedBefore(ctx context.Context, date string) ([]domain.Event, error) {
	return r.list(ctx, eventSelect+` WHERE e.event_date < $1 ORDER BY e.id`, date)
}

func (r *eventRepository) list(ctx context.Context, query string, args ...any) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, mapErr(rows.Err())
}

func scanEvent(s scanner) (*domain.Event, error) {
	e := &domain.Event{}
	var date, createdOn time.Time
	if err := s.Scan(&e.ID, &e.ClubID, &e.ClubName, &e.Name, &e.Description, &e.Image, &date, &e.Time, &e.Venue, &createdOn); err != nil {
		return nil, mapErr(err)
	}
	e.Date = date.Format("2006-01-02")
	e.CreatedOn = createdOn.Format("2006-01-02")
	return e, nil
}
