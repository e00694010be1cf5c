package handler

import (
	"encoding/json"
	"io"
	"strings"

	"jobmatch/internal/delivery/http/dto"
	"jobmatch/internal/delivery/http/middleware"
	"jobmatch/internal/pkg/response"
	"jobmatch/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type ClaimantHandler struct {
	uc       usecase.ClaimantUsecase
	maxBytes int64
}

func NewClaimantHandler(uc usecase.ClaimantUsecase, maxUploadBytes int64) *ClaimantHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = usecase.DefaultUploadMaxBytes
	}
	return &ClaimantHandler{uc: uc, maxBytes: maxUploadBytes}
}

func (h *ClaimantHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/claimants")
	grp.Post("", h.Create)
	grp.Get("", h.List)
	grp.Get("/:id", h.Get)
	grp.Patch("/:id", h.Update)
	grp.Post("/:id/documents", h.UploadDocument)
}

func (h *ClaimantHandler) Create(c fiber.Ctx) error {
	var req dto.CreateClaimantRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	out, err := h.uc.Create(c.Context(), usecase.CreateClaimantInput{
		Name:           req.Name,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Notes:          req.Notes,
		TargetLocation: req.TargetLocation,
		SearchKeywords: req.SearchKeywords,
	})
	if err != nil {
		return mapUsecaseError(err, "Claimant not found")
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, dto.NewClaimantResponse(out))
}

func (h *ClaimantHandler) List(c fiber.Ctx) error {
	offset, limit, err := parsePage(c)
	if err != nil {
		return err
	}

	items, err := h.uc.List(c.Context(), offset, limit)
	if err != nil {
		return mapUsecaseError(err, "Claimant not found")
	}

	out := make([]dto.ClaimantResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.NewClaimantResponse(it))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *ClaimantHandler) Get(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	out, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err, "Claimant not found")
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewClaimantResponse(out))
}

// Update takes a raw JSON object so that absent fields can be told apart
// from fields explicitly set to null.
func (h *ClaimantHandler) Update(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var fields map[string]any
	if err := json.Unmarshal(c.Body(), &fields); err != nil || fields == nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	out, err := h.uc.Update(c.Context(), id, fields)
	if err != nil {
		return mapUsecaseError(err, "Claimant not found")
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewClaimantResponse(out))
}

func (h *ClaimantHandler) UploadDocument(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Missing file", nil, err)
	}
	if fh.Size > h.maxBytes {
		return middleware.NewAppError(fiber.StatusRequestEntityTooLarge, response.MessageRequestTooLarge, nil, nil)
	}

	f, err := fh.Open()
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Unreadable file", nil, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Unreadable file", nil, err)
	}
	if int64(len(data)) > h.maxBytes {
		return middleware.NewAppError(fiber.StatusRequestEntityTooLarge, response.MessageRequestTooLarge, nil, nil)
	}

	doc, err := h.uc.UploadDocument(c.Context(), usecase.UploadDocumentInput{
		ClaimantID:   id,
		DocumentType: strings.TrimSpace(c.FormValue("document_type")),
		Filename:     fh.Filename,
		ContentType:  fh.Header.Get("Content-Type"),
		Data:         data,
	})
	if err != nil {
		return mapUsecaseError(err, "Claimant not found")
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, dto.NewDocumentResponse(doc))
}
