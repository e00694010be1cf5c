package job

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("job posting not found")

// Posting is a scraped job posting. JobURL is the natural key: a second
// posting with the same URL is never stored.
type Posting struct {
	ID            uuid.UUID
	Title         string
	CompanyName   *string
	Location      *string
	Description   string
	JobURL        string
	SourceWebsite *string
	DateScraped   time.Time
	DatePosted    *time.Time
	IsActive      bool
}

// LocationValue returns the location or "" when unknown.
func (p Posting) LocationValue() string {
	if p.Location == nil {
		return ""
	}
	return *p.Location
}

// Text is the lowercased text that keywords are extracted from.
func (p Posting) Text() string {
	return strings.ToLower(p.Title + " " + p.Description)
}

// NewPosting is a normalized record handed over by ingestion.
type NewPosting struct {
	Title         string
	CompanyName   *string
	Location      *string
	Description   string
	JobURL        string
	SourceWebsite *string
	DatePosted    *time.Time
}

var ErrInvalidPosting = errors.New("invalid job posting")
