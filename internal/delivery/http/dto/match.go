package dto

import (
	"time"

	"jobmatch/internal/domain/match"

	"github.com/google/uuid"
)

type MatchResponse struct {
	ID           uuid.UUID    `json:"id"`
	ClaimantID   uuid.UUID    `json:"claimant_id"`
	JobPostingID uuid.UUID    `json:"job_posting_id"`
	MatchScore   float64      `json:"match_score"`
	Status       string       `json:"status"`
	Notes        *string      `json:"notes"`
	MatchedAt    time.Time    `json:"matched_at"`
	Job          *JobResponse `json:"job_posting,omitempty"`
}

// MatchRunResponse is the body of a matching run.
type MatchRunResponse struct {
	Matches []MatchResponse `json:"matches"`
	Count   int             `json:"count"`
}

func NewMatchResponse(m match.MatchedJob) MatchResponse {
	out := MatchResponse{
		ID:           m.ID,
		ClaimantID:   m.ClaimantID,
		JobPostingID: m.JobPostingID,
		MatchScore:   m.MatchScore,
		Status:       m.Status,
		Notes:        m.Notes,
		MatchedAt:    m.MatchedAt,
	}
	if m.Job != nil {
		j := NewJobResponse(*m.Job)
		out.Job = &j
	}
	return out
}

func NewMatchResponses(in []match.MatchedJob) []MatchResponse {
	out := make([]MatchResponse, 0, len(in))
	for _, m := range in {
		out = append(out, NewMatchResponse(m))
	}
	return out
}
