package scraper

import (
	"context"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Record is one scraped posting before it reaches the job store.
type Record struct {
	Title         string     `json:"title"`
	CompanyName   string     `json:"company_name"`
	Location      string     `json:"location"`
	Description   string     `json:"description"`
	JobURL        string     `json:"job_url"`
	SourceWebsite string     `json:"source_website"`
	DatePosted    *time.Time `json:"date_posted,omitempty"`
}

// Source fetches postings for a search query and location.
type Source interface {
	Name() string
	Fetch(ctx context.Context, query, location string) ([]Record, error)
}

// htmlToText renders an HTML fragment as markdown text. Fragments the
// converter rejects fall back to the raw input with tags left in place.
func htmlToText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}
	md, err := htmltomarkdown.ConvertString(fragment)
	if err != nil {
		return fragment
	}
	return strings.TrimSpace(md)
}
