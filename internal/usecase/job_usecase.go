package usecase

import (
	"context"
	"errors"
	"fmt"

	"jobmatch/internal/domain/job"
	"jobmatch/internal/logger"
	"jobmatch/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type JobUsecase interface {
	List(ctx context.Context, offset, limit int) ([]job.Posting, int64, error)
	Get(ctx context.Context, id uuid.UUID) (job.Posting, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (job.Posting, error)
}

type Job struct {
	jobs   repository.JobPostingRepository
	cache  JobCache
	logger *zap.Logger
}

func NewJobUsecase(jobs repository.JobPostingRepository, cache JobCache, log *zap.Logger) *Job {
	return &Job{jobs: jobs, cache: cache, logger: logger.Named(log, "jobs")}
}

func (u *Job) List(ctx context.Context, offset, limit int) ([]job.Posting, int64, error) {
	offset, limit, err := normalizePagination(offset, limit)
	if err != nil {
		return nil, 0, err
	}
	items, err := u.jobs.List(ctx, offset, limit)
	if err != nil {
		u.logger.Error("list jobs failed", zap.Error(err))
		return nil, 0, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	total, err := u.jobs.Count(ctx)
	if err != nil {
		u.logger.Error("count jobs failed", zap.Error(err))
		return nil, 0, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return items, total, nil
}

func (u *Job) Get(ctx context.Context, id uuid.UUID) (job.Posting, error) {
	p, err := u.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return job.Posting{}, ErrNotFound
		}
		u.logger.Error("get job failed", zap.Error(err))
		return job.Posting{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return p, nil
}

// SetActive withdraws or reactivates a posting. Inactive postings are never
// matched. Cached match pages embed the posting, so all of them are dropped.
func (u *Job) SetActive(ctx context.Context, id uuid.UUID, active bool) (job.Posting, error) {
	p, err := u.jobs.SetActive(ctx, id, active)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return job.Posting{}, ErrNotFound
		}
		u.logger.Error("set job active failed", zap.Error(err))
		return job.Posting{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if u.cache != nil {
		if err := u.cache.InvalidateAllMatches(ctx); err != nil {
			u.logger.Warn("invalidate match cache failed", zap.Error(err))
		}
	}
	u.logger.Info("job active flag changed", zap.String("job_id", id.String()), zap.Bool("is_active", active))
	return p, nil
}
