package handler

import (
	"errors"
	"strconv"

	"jobmatch/internal/delivery/http/middleware"
	"jobmatch/internal/pkg/response"
	"jobmatch/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

func parseQueryIntStrict(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return v, nil
}

func parsePage(c fiber.Ctx) (int, int, error) {
	offset, err := parseQueryIntStrict(c, "offset", 0)
	if err != nil {
		return 0, 0, middleware.NewAppError(fiber.StatusBadRequest, "Invalid offset", nil, err)
	}
	limit, err := parseQueryIntStrict(c, "limit", 0)
	if err != nil {
		return 0, 0, middleware.NewAppError(fiber.StatusBadRequest, "Invalid limit", nil, err)
	}
	return offset, limit, nil
}

// effectiveLimit mirrors the usecase default so listings can echo it back.
func effectiveLimit(limit int) int {
	if limit == 0 {
		return 20
	}
	return limit
}

func parseID(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+name, nil, err)
	}
	return id, nil
}

func mapUsecaseError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, notFoundMsg, nil, err)
	case errors.Is(err, usecase.ErrConflict):
		return middleware.NewAppError(fiber.StatusConflict, err.Error(), nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
