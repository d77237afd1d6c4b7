package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clubforms-backend/internal/domain"
	"clubforms-backend/internal/logger"
	"clubforms-backend/internal/repository"
)

type formRepository struct {
	db *sql.DB
}

func NewFormRepository(db *sql.DB) repository.FormRepository {
	return &formRepository{db: db}
}

const formColumns = `id, owner_kind, owner_id, version, fields, status, capacity, superseded, created_at, closed_at`

// Replace runs in one transaction: the UPDATE takes the row lock on the
// owner's current form, so an in-flight Append on that form either commits
// first or sees it superseded.
func (r *formRepository) Replace(ctx context.Context, def *domain.FormDefinition) error {
	logger.EnterMethod("formRepository.Replace", "owner", def.Owner.String())

	fields, err := json.Marshal(def.Fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.ExitMethodWithError("formRepository.Replace", err)
		return mapErr(err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	var prevVersion int32
	err = tx.QueryRowContext(ctx,
		`UPDATE forms SET superseded = true, status = 'closed', closed_at = COALESCE(closed_at, $3)
		 WHERE owner_kind = $1 AND owner_id = $2 AND NOT superseded RETURNING version`,
		def.Owner.Kind, def.Owner.ID, now).Scan(&prevVersion)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.ExitMethodWithError("formRepository.Replace", err, "owner", def.Owner.String())
		return mapErr(err)
	}

	def.Version = prevVersion + 1
	def.Status = domain.FormStatusOpen
	def.Superseded = false
	def.ClosedAt = nil

	err = tx.QueryRowContext(ctx,
		`INSERT INTO forms (owner_kind, owner_id, version, fields, status, capacity, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		def.Owner.Kind, def.Owner.ID, def.Version, fields, def.Status, nullInt(def.Capacity), now).Scan(&def.ID)
	if err != nil {
		logger.ExitMethodWithError("formRepository.Replace", err, "owner", def.Owner.String())
		return mapErr(err)
	}
	def.CreatedAt = now

	if err := tx.Commit(); err != nil {
		logger.ExitMethodWithError("formRepository.Replace", err, "owner", def.Owner.String())
		return mapErr(err)
	}

	logger.ExitMethod("formRepository.Replace", "formID", def.ID, "version", def.Version)
	return nil
}

func (r *formRepository) GetByID(ctx context.Context, id int64) (*domain.FormDefinition, error) {
	query := `SELECT ` + formColumns + ` FROM forms WHERE id = $1`
	return scanForm(r.db.QueryRowContext(ctx, query, id))
}

func (r *formRepository) GetCurrent(ctx context.Context, owner domain.Owner) (*domain.FormDefinition, error) {
	query := `SELECT ` + formColumns + ` FROM forms WHERE owner_kind = $1 AND owner_id = $2 AND NOT superseded`
	return scanForm(r.db.QueryRowContext(ctx, query, owner.Kind, owner.ID))
}

func (r *formRepository) ListOpen(ctx context.Context, kind domain.OwnerKind) ([]domain.FormDefinition, error) {
	query := `SELECT ` + formColumns + ` FROM forms WHERE owner_kind = $1 AND status = 'open' AND NOT superseded ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, kind)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var forms []domain.FormDefinition
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		forms = append(forms, *f)
	}
	return forms, mapErr(rows.Err())
}

func (r *formRepository) Close(ctx context.Context, id int64) error {
	query := `UPDATE forms SET status = 'closed', closed_at = COALESCE(closed_at, $2) WHERE id = $1`
	logger.DatabaseCall("Close", query, "formID", id)
	result, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		logger.DatabaseResult("Close", 0, err, "formID", id)
		return mapErr(err)
	}
	n, err := result.RowsAffected()
	logger.DatabaseResult("Close", n, err, "formID", id)
	if err != nil {
		return mapErr(err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanForm(s scanner) (*domain.FormDefinition, error) {
	f := &domain.FormDefinition{}
	var (
		fields   []byte
		capacity sql.NullInt64
		closedAt sql.NullTime
	)
	err := s.Scan(&f.ID, &f.Owner.Kind, &f.Owner.ID, &f.Version, &fields, &f.Status, &capacity, &f.Superseded, &f.CreatedAt, &closedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	if err := json.Unmarshal(fields, &f.Fields); err != nil {
		return nil, fmt.Errorf("decode fields of form %d: %w", f.ID, err)
	}
	if capacity.Valid {
		c := int(capacity.Int64)
		f.Capacity = &c
	}
	if closedAt.Valid {
		t := closedAt.Time
		f.ClosedAt = &t
	}
	return f, nil
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
