package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type scanner interface {
	Scan(dest ...any) error
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}

// newID returns a time-ordered id, so ORDER BY id follows insertion order on
// every backend.
func newID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

func normalizePage(offset, limit int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

func nullableText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	return nullableText(*p)
}
