package handler

import (
	"jobmatch/internal/delivery/http/dto"
	"jobmatch/internal/pkg/response"
	"jobmatch/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type MatchHandler struct {
	uc usecase.MatchUsecase
}

func NewMatchHandler(uc usecase.MatchUsecase) *MatchHandler {
	return &MatchHandler{uc: uc}
}

func (h *MatchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/claimants/:id/match", h.Run)
	r.Get("/claimants/:id/matches", h.ListForClaimant)
	r.Get("/matches", h.List)
}

func (h *MatchHandler) Run(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	out, err := h.uc.Run(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err, "Claimant not found")
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.MatchRunResponse{
		Matches: dto.NewMatchResponses(out),
		Count:   len(out),
	})
}

func (h *MatchHandler) ListForClaimant(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	offset, limit, err := parsePage(c)
	if err != nil {
		return err
	}

	res, err := h.uc.ListForClaimant(c.Context(), id, offset, limit)
	if err != nil {
		return mapUsecaseError(err, "Claimant not found")
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, response.Page{
		Items:  dto.NewMatchResponses(res.Items),
		Total:  res.Total,
		Offset: offset,
		Limit:  effectiveLimit(limit),
	})
}

func (h *MatchHandler) List(c fiber.Ctx) error {
	offset, limit, err := parsePage(c)
	if err != nil {
		return err
	}

	out, err := h.uc.List(c.Context(), offset, limit)
	if err != nil {
		return mapUsecaseError(err, "Match not found")
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMatchResponses(out))
}
