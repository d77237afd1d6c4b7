package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"clubforms-backend/internal/domain"
	"clubforms-backend/internal/logger"
	"clubforms-backend/internal/repository"
)

type submissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) repository.SubmissionRepository {
	return &submissionRepository{db: db}
}

// Append locks the form row for the duration of the transaction. The
// capacity count and the insert therefore see a consistent view per form,
// while submissions to other forms proceed in parallel.
func (r *submissionRepository) Append(ctx context.Context, sub *domain.Submission) error {
	logger.EnterMethod("submissionRepository.Append", "formID", sub.FormID)

	values, err := json.Marshal(sub.Values)
	if err != nil {
		return fmt.Errorf("encode values: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.ExitMethodWithError("submissionRepository.Append", err, "formID", sub.FormID)
		return mapErr(err)
	}
	defer tx.Rollback()

	var (
		status     domain.FormStatus
		superseded bool
		version    int32
		capacity   sql.NullInt64
		nextID     int64
	)
	err = tx.QueryRowContext(ctx,
		`SELECT status, superseded, version, capacity, next_submission_id FROM forms WHERE id = $1 FOR UPDATE`,
		sub.FormID).Scan(&status, &superseded, &version, &capacity, &nextID)
	if err != nil {
		logger.ExitMethodWithError("submissionRepository.Append", err, "formID", sub.FormID)
		return mapErr(err)
	}

	switch {
	case superseded, version != sub.FormVersion:
		return domain.ErrStaleSchema
	case status == domain.FormStatusClosed:
		return domain.ErrFormClosed
	}

	if capacity.Valid {
		var count int64
		err = tx.QueryRowContext(ctx, `SELECT count(*) FROM submissions WHERE form_id = $1`, sub.FormID).Scan(&count)
		if err != nil {
			logger.ExitMethodWithError("submissionRepository.Append", err, "formID", sub.FormID)
			return mapErr(err)
		}
		if count >= capacity.Int64 {
			logger.ExitMethod("submissionRepository.Append", "formID", sub.FormID, "result", "capacity_reached")
			return domain.ErrCapacityReached
		}
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO submissions (form_id, id, form_version, "values", submitted_at) VALUES ($1, $2, $3, $4, $5)`,
		sub.FormID, nextID, version, values, now)
	if err != nil {
		logger.ExitMethodWithError("submissionRepository.Append", err, "formID", sub.FormID)
		return mapErr(err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE forms SET next_submission_id = $2 WHERE id = $1`, sub.FormID, nextID+1)
	if err != nil {
		logger.ExitMethodWithError("submissionRepository.Append", err, "formID", sub.FormID)
		return mapErr(err)
	}

	if err := tx.Commit(); err != nil {
		logger.ExitMethodWithError("submissionRepository.Append", err, "formID", sub.FormID)
		return mapErr(err)
	}

	sub.ID = nextID
	sub.SubmittedAt = now
	logger.ExitMethod("submissionRepository.Append", "formID", sub.FormID, "submissionID", sub.ID)
	return nil
}

func (r *submissionRepository) CountByForm(ctx context.Context, formID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM submissions WHERE form_id = $1`, formID).Scan(&count)
	return count, mapErr(err)
}

func (r *submissionRepository) ListByForm(ctx context.Context, formID int64) ([]domain.Submission, error) {
	query := `SELECT id, form_id, form_version, "values", submitted_at FROM submissions WHERE form_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, formID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	subs := []domain.Submission{}
	for rows.Next() {
		var (
			s      domain.Submission
			values []byte
		)
		if err := rows.Scan(&s.ID, &s.FormID, &s.FormVersion, &values, &s.SubmittedAt); err != nil {
			return nil, mapErr(err)
		}
		if err := json.Unmarshal(values, &s.Values); err != nil {
			return nil, fmt.Errorf("decode values of submission %d/%d: %w", s.FormID, s.ID, err)
		}
		subs = append(subs, s)
	}
	return subs, mapErr(rows.Err())
}

func (r *submissionRepository) DeleteByForm(ctx context.Context, formID int64) (int64, error) {
	query := `DELETE FROM submissions WHERE form_id = $1`
	logger.DatabaseCall("DeleteByForm", query, "formID", formID)
	result, err := r.db.ExecContext(ctx, query, formID)
	if err != nil {
		logger.DatabaseResult("DeleteByForm", 0, err, "formID", formID)
		return 0, mapErr(err)
	}
	n, err := result.RowsAffected()
	logger.DatabaseResult("DeleteByForm", n, err, "formID", formID)
	return n, mapErr(err)
}
