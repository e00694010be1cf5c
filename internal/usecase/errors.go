package usecase

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal error")
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

func normalizePagination(offset, limit int) (int, int, error) {
	if offset < 0 || limit < 0 || limit > maxLimit {
		return 0, 0, ErrInvalidInput
	}
	if limit == 0 {
		limit = defaultLimit
	}
	return offset, limit, nil
}
