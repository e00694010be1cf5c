package match

import (
	"errors"
	"time"

	"jobmatch/internal/domain/job"

	"github.com/google/uuid"
)

const StatusNew = "new"

var ErrNotFound = errors.New("match not found")

// MatchedJob is the single record per (claimant, job posting) pair.
type MatchedJob struct {
	ID           uuid.UUID
	ClaimantID   uuid.UUID
	JobPostingID uuid.UUID
	MatchScore   float64
	Status       string
	Notes        *string
	MatchedAt    time.Time

	// Job is only populated by listings that join the posting.
	Job *job.Posting
}

type Upsert struct {
	ClaimantID   uuid.UUID
	JobPostingID uuid.UUID
	Score        float64
	Status       string
	Notes        string
}
