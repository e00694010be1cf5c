package dto

import (
	"time"

	"jobmatch/internal/domain/job"

	"github.com/google/uuid"
)

type JobResponse struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	CompanyName   *string    `json:"company_name"`
	Location      *string    `json:"location"`
	Description   string     `json:"description"`
	JobURL        string     `json:"job_url"`
	SourceWebsite *string    `json:"source_website"`
	DateScraped   time.Time  `json:"date_scraped"`
	DatePosted    *time.Time `json:"date_posted"`
	IsActive      bool       `json:"is_active"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

func NewJobResponse(p job.Posting) JobResponse {
	return JobResponse{
		ID:            p.ID,
		Title:         p.Title,
		CompanyName:   p.CompanyName,
		Location:      p.Location,
		Description:   p.Description,
		JobURL:        p.JobURL,
		SourceWebsite: p.SourceWebsite,
		DateScraped:   p.DateScraped,
		DatePosted:    p.DatePosted,
		IsActive:      p.IsActive,
	}
}
