package handler

import (
	"jobmatch/internal/delivery/http/dto"
	"jobmatch/internal/delivery/http/middleware"
	"jobmatch/internal/pkg/response"
	"jobmatch/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type ScraperHandler struct {
	uc usecase.ScraperUsecase
}

func NewScraperHandler(uc usecase.ScraperUsecase) *ScraperHandler {
	return &ScraperHandler{uc: uc}
}

func (h *ScraperHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/scraper/trigger", h.Trigger)
}

// Trigger runs one ingestion. An empty body uses the default query and
// location.
func (h *ScraperHandler) Trigger(c fiber.Ctx) error {
	var req dto.ScrapeTriggerRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
		}
	}

	sum, err := h.uc.Trigger(c.Context(), req.JobTitle, req.Location)
	if err != nil {
		return mapUsecaseError(err, "Not found")
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, sum)
}
