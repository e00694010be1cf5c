package matching

import (
	"context"
	"errors"
	"fmt"

	"jobmatch/internal/domain/claimant"
	"jobmatch/internal/domain/job"
	"jobmatch/internal/domain/match"
	scoring "jobmatch/internal/domain/matching"
	"jobmatch/internal/keyword"
	"jobmatch/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Config struct {
	MinScore          int
	NotesKeywordLimit int
	JobPageSize       int
}

func DefaultConfig() Config {
	return Config{
		MinScore:          scoring.DefaultMinScore,
		NotesKeywordLimit: scoring.DefaultNotesKeywordLimit,
		JobPageSize:       500,
	}
}

type ClaimantReader interface {
	GetWithDocuments(ctx context.Context, id uuid.UUID) (claimant.Claimant, error)
}

type JobScanner interface {
	All(ctx context.Context, pageSize int, fn func(job.Posting) error) error
}

type MatchWriter interface {
	Upsert(ctx context.Context, in match.Upsert) (match.MatchedJob, error)
}

// Engine matches one claimant against the whole active job pool and records
// every qualifying pair through the match store.
type Engine struct {
	claimants ClaimantReader
	jobs      JobScanner
	matches   MatchWriter
	extractor *keyword.Extractor
	cfg       Config
	logger    *zap.Logger
}

func NewEngine(claimants ClaimantReader, jobs JobScanner, matches MatchWriter, cfg Config, log *zap.Logger) *Engine {
	def := DefaultConfig()
	if cfg.MinScore <= 0 {
		cfg.MinScore = def.MinScore
	}
	if cfg.NotesKeywordLimit <= 0 {
		cfg.NotesKeywordLimit = def.NotesKeywordLimit
	}
	if cfg.JobPageSize <= 0 {
		cfg.JobPageSize = def.JobPageSize
	}
	return &Engine{
		claimants: claimants,
		jobs:      jobs,
		matches:   matches,
		extractor: keyword.NewExtractor(keyword.Options{}),
		cfg:       cfg,
		logger:    logger.Named(log, "engine"),
	}
}

// Profile builds the claimant's keyword profile from CV documents and the
// comma-separated search keywords.
func (e *Engine) Profile(c claimant.Claimant) scoring.Profile {
	cv := e.extractor.Extract(c.CVText())
	explicit := keyword.SplitList(c.SearchKeywordsValue())
	return scoring.Profile{
		Keywords:       cv.Union(explicit),
		TargetLocation: c.TargetLocationValue(),
	}
}

// MatchJobsForClaimant returns the persisted matches in job order. A claimant
// that does not exist yields an empty result, not an error.
func (e *Engine) MatchJobsForClaimant(ctx context.Context, claimantID uuid.UUID) ([]match.MatchedJob, error) {
	log := e.logger.With(zap.String("claimant_id", claimantID.String()))

	c, err := e.claimants.GetWithDocuments(ctx, claimantID)
	if err != nil {
		if errors.Is(err, claimant.ErrNotFound) {
			log.Warn("claimant not found, nothing to match")
			return []match.MatchedJob{}, nil
		}
		return nil, fmt.Errorf("load claimant: %w", err)
	}

	profile := e.Profile(c)
	if len(profile.Keywords) == 0 {
		log.Info("claimant has no keywords, skipping")
		return []match.MatchedJob{}, nil
	}
	log.Debug("claimant profile built",
		zap.Int("keywords", len(profile.Keywords)),
		zap.String("target_location", profile.TargetLocation),
	)

	out := make([]match.MatchedJob, 0)
	scanned := 0
	err = e.jobs.All(ctx, e.cfg.JobPageSize, func(p job.Posting) error {
		scanned++
		if !p.IsActive || !profile.LocationAllows(p.LocationValue()) {
			return nil
		}

		res := scoring.Calculate(profile, e.extractor.Extract(p.Text()))
		if res.Score < e.cfg.MinScore {
			return nil
		}

		m, err := e.matches.Upsert(ctx, match.Upsert{
			ClaimantID:   c.ID,
			JobPostingID: p.ID,
			Score:        float64(res.Score),
			Status:       match.StatusNew,
			Notes:        scoring.Notes(res, e.cfg.NotesKeywordLimit, profile.TargetLocation),
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			log.Error("upsert match failed",
				zap.String("job_id", p.ID.String()),
				zap.Error(err),
			)
			return nil
		}

		log.Debug("match recorded",
			zap.String("job_id", p.ID.String()),
			zap.Int("score", res.Score),
			zap.Strings("common", res.CommonKeywords),
		)
		out = append(out, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan jobs: %w", err)
	}

	log.Info("matching completed", zap.Int("jobs_scanned", scanned), zap.Int("matches", len(out)))
	return out, nil
}
