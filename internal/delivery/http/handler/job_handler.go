package handler

import (
	"jobmatch/internal/delivery/http/dto"
	"jobmatch/internal/delivery/http/middleware"
	"jobmatch/internal/pkg/response"
	"jobmatch/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type JobHandler struct {
	uc usecase.JobUsecase
}

func NewJobHandler(uc usecase.JobUsecase) *JobHandler {
	return &JobHandler{uc: uc}
}

func (h *JobHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/jobs")
	grp.Get("", h.List)
	grp.Get("/:id", h.Get)
	grp.Patch("/:id/active", h.SetActive)
}

func (h *JobHandler) List(c fiber.Ctx) error {
	offset, limit, err := parsePage(c)
	if err != nil {
		return err
	}

	items, total, err := h.uc.List(c.Context(), offset, limit)
	if err != nil {
		return mapUsecaseError(err, "Job not found")
	}

	out := make([]dto.JobResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.NewJobResponse(it))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, response.Page{
		Items:  out,
		Total:  total,
		Offset: offset,
		Limit:  effectiveLimit(limit),
	})
}

func (h *JobHandler) Get(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	p, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err, "Job not found")
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJobResponse(p))
}

func (h *JobHandler) SetActive(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.SetActiveRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}
	if req.IsActive == nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "is_active is required", nil, nil)
	}

	p, err := h.uc.SetActive(c.Context(), id, *req.IsActive)
	if err != nil {
		return mapUsecaseError(err, "Job not found")
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJobResponse(p))
}
