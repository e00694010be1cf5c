package usecase

import (
	"context"
	"fmt"

	"jobmatch/internal/domain/match"
	"jobmatch/internal/infrastructure/cache"
	"jobmatch/internal/logger"
	"jobmatch/internal/repository"
	"jobmatch/internal/ws"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MatchRunner interface {
	MatchJobsForClaimant(ctx context.Context, claimantID uuid.UUID) ([]match.MatchedJob, error)
}

type Notifier interface {
	Publish(eventType string, data any)
}

type ClaimantMatches struct {
	Items []match.MatchedJob `json:"items"`
	Total int64              `json:"total"`
}

type MatchUsecase interface {
	Run(ctx context.Context, claimantID uuid.UUID) ([]match.MatchedJob, error)
	ListForClaimant(ctx context.Context, claimantID uuid.UUID, offset, limit int) (ClaimantMatches, error)
	List(ctx context.Context, offset, limit int) ([]match.MatchedJob, error)
}

type Match struct {
	claimants repository.ClaimantRepository
	matches   repository.MatchRepository
	engine    MatchRunner
	cache     MatchCache
	notifier  Notifier
	logger    *zap.Logger
}

func NewMatchUsecase(claimants repository.ClaimantRepository, matches repository.MatchRepository, engine MatchRunner, cache MatchCache, notifier Notifier, log *zap.Logger) *Match {
	return &Match{
		claimants: claimants,
		matches:   matches,
		engine:    engine,
		cache:     cache,
		notifier:  notifier,
		logger:    logger.Named(log, "matches"),
	}
}

// Run checks that the claimant exists before handing over to the engine, so
// API callers get ErrNotFound instead of an empty result.
func (u *Match) Run(ctx context.Context, claimantID uuid.UUID) ([]match.MatchedJob, error) {
	ok, err := u.claimants.ExistsByID(ctx, claimantID)
	if err != nil {
		u.logger.Error("check claimant failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if !ok {
		return nil, ErrNotFound
	}

	out, err := u.engine.MatchJobsForClaimant(ctx, claimantID)
	if err != nil {
		u.logger.Error("match run failed", zap.String("claimant_id", claimantID.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if u.cache != nil {
		if err := u.cache.InvalidateClaimantMatches(ctx, claimantID); err != nil {
			u.logger.Warn("invalidate match cache failed", zap.Error(err))
		}
	}
	if u.notifier != nil && len(out) > 0 {
		u.notifier.Publish(ws.EventMatchesUpdated, map[string]any{
			"claimant_id": claimantID,
			"count":       len(out),
		})
	}
	return out, nil
}

func (u *Match) ListForClaimant(ctx context.Context, claimantID uuid.UUID, offset, limit int) (ClaimantMatches, error) {
	offset, limit, err := normalizePagination(offset, limit)
	if err != nil {
		return ClaimantMatches{}, err
	}

	key := cache.MatchListKey(claimantID, offset, limit)
	if u.cache != nil {
		var cached ClaimantMatches
		hit, err := u.cache.GetJSON(ctx, key, &cached)
		if err == nil && hit {
			u.logger.Debug("cache hit", zap.String("key", key))
			return cached, nil
		}
	}

	ok, err := u.claimants.ExistsByID(ctx, claimantID)
	if err != nil {
		u.logger.Error("check claimant failed", zap.Error(err))
		return ClaimantMatches{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if !ok {
		return ClaimantMatches{}, ErrNotFound
	}

	items, err := u.matches.ListForClaimant(ctx, claimantID, offset, limit)
	if err != nil {
		u.logger.Error("list matches failed", zap.Error(err))
		return ClaimantMatches{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	total, err := u.matches.CountForClaimant(ctx, claimantID)
	if err != nil {
		u.logger.Error("count matches failed", zap.Error(err))
		return ClaimantMatches{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	out := ClaimantMatches{Items: items, Total: total}
	if u.cache != nil {
		if err := u.cache.SetJSON(ctx, key, out, 0); err != nil {
			u.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}

func (u *Match) List(ctx context.Context, offset, limit int) ([]match.MatchedJob, error) {
	offset, limit, err := normalizePagination(offset, limit)
	if err != nil {
		return nil, err
	}
	out, err := u.matches.List(ctx, offset, limit)
	if err != nil {
		u.logger.Error("list all matches failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return out, nil
}
