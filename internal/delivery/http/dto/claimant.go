package dto

import (
	"encoding/json"
	"time"

	"jobmatch/internal/domain/claimant"

	"github.com/google/uuid"
)

type CreateClaimantRequest struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	PhoneNumber    *string `json:"phone_number"`
	Notes          *string `json:"notes"`
	TargetLocation *string `json:"target_location"`
	SearchKeywords *string `json:"search_keywords"`
}

type ClaimantResponse struct {
	ID             uuid.UUID          `json:"id"`
	Name           string             `json:"name"`
	Email          string             `json:"email"`
	PhoneNumber    *string            `json:"phone_number"`
	Notes          *string            `json:"notes"`
	TargetLocation *string            `json:"target_location"`
	SearchKeywords *string            `json:"search_keywords"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	Documents      []DocumentResponse `json:"documents,omitempty"`
}

type DocumentResponse struct {
	ID             uuid.UUID       `json:"id"`
	ClaimantID     uuid.UUID       `json:"claimant_id"`
	DocumentType   string          `json:"document_type"`
	FilePath       string          `json:"file_path"`
	RawText        *string         `json:"raw_text_content"`
	ParsedEntities json.RawMessage `json:"parsed_entities,omitempty"`
	UploadedAt     time.Time       `json:"uploaded_at"`
}

func NewClaimantResponse(c claimant.Claimant) ClaimantResponse {
	out := ClaimantResponse{
		ID:             c.ID,
		Name:           c.Name,
		Email:          c.Email,
		PhoneNumber:    c.PhoneNumber,
		Notes:          c.Notes,
		TargetLocation: c.TargetLocation,
		SearchKeywords: c.SearchKeywords,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	if c.Documents != nil {
		out.Documents = make([]DocumentResponse, 0, len(c.Documents))
		for _, d := range c.Documents {
			out.Documents = append(out.Documents, NewDocumentResponse(d))
		}
	}
	return out
}

func NewDocumentResponse(d claimant.Document) DocumentResponse {
	return DocumentResponse{
		ID:             d.ID,
		ClaimantID:     d.ClaimantID,
		DocumentType:   d.DocumentType,
		FilePath:       d.FilePath,
		RawText:        d.RawText,
		ParsedEntities: d.ParsedEntities,
		UploadedAt:     d.UploadedAt,
	}
}
