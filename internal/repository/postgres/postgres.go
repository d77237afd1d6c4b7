package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	_ "embed"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"

	"clubforms-backend/internal/domain"
	"clubforms-backend/internal/logger"
	"clubforms-backend/internal/repository"
)

//go:embed schema.sql
var schemaSQL string

type Store struct {
	db *sql.DB
	repository.Store
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db: db,
		Store: repository.Store{
			Clubs:       NewClubRepository(db),
			Events:      NewEventRepository(db),
			Forms:       NewFormRepository(db),
			Submissions: NewSubmissionRepository(db),
		},
	}
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	logger.DatabaseCall("migrate", "schema.sql")
	_, err := s.db.ExecContext(ctx, schemaSQL)
	logger.DatabaseResult("migrate", 0, err)
	if err != nil {
		return fmt.Errorf("apply schema: %w", mapErr(err))
	}
	return nil
}

// mapErr translates driver errors into the domain taxonomy: missing rows
// become ErrNotFound and connection-level failures ErrStorageUnavailable.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if isUnavailable(err) {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return err
}

func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "53", "57": // connection exception, insufficient resources, operator intervention
			return true
		}
	}
	return false
}
