package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MatchCache is the slice of the redis cache the match listings use. The
// redis implementation turns every call into a miss while the server is
// unreachable.
type MatchCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	InvalidateClaimantMatches(ctx context.Context, claimantID uuid.UUID) error
}

// JobCache drops match listings that embed a posting whose state changed.
type JobCache interface {
	InvalidateAllMatches(ctx context.Context) error
}
