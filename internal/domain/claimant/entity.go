package claimant

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("claimant not found")
	ErrEmailTaken = errors.New("claimant email already registered")
)

const DocumentTypeCV = "cv"

type Claimant struct {
	ID             uuid.UUID
	Name           string
	Email          string
	PhoneNumber    *string
	Notes          *string
	TargetLocation *string
	SearchKeywords *string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Documents is filled by GetWithDocuments only.
	Documents []Document
}

func (c Claimant) TargetLocationValue() string {
	if c.TargetLocation == nil {
		return ""
	}
	return strings.TrimSpace(*c.TargetLocation)
}

func (c Claimant) SearchKeywordsValue() string {
	if c.SearchKeywords == nil {
		return ""
	}
	return *c.SearchKeywords
}

// CVText joins the raw text of every CV document, in document order.
func (c Claimant) CVText() string {
	parts := make([]string, 0, len(c.Documents))
	for _, d := range c.Documents {
		if !d.IsCV() || d.RawText == nil || *d.RawText == "" {
			continue
		}
		parts = append(parts, *d.RawText)
	}
	return strings.Join(parts, " ")
}

type Document struct {
	ID             uuid.UUID
	ClaimantID     uuid.UUID
	DocumentType   string
	FilePath       string
	RawText        *string
	ParsedEntities json.RawMessage
	UploadedAt     time.Time
}

func (d Document) IsCV() bool {
	return strings.EqualFold(d.DocumentType, DocumentTypeCV)
}

type NewClaimant struct {
	Name           string
	Email          string
	PhoneNumber    *string
	Notes          *string
	TargetLocation *string
	SearchKeywords *string
}

type NewDocument struct {
	ClaimantID   uuid.UUID
	DocumentType string
	FilePath     string
	RawText      string
}
