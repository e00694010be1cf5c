// Package scheduler runs ingestion on a cron spec and re-matches every
// claimant after each ingestion.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"jobmatch/internal/domain/claimant"
	"jobmatch/internal/domain/match"
	"jobmatch/internal/ingestion"
	"jobmatch/internal/logger"
	"jobmatch/internal/ws"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	DefaultSpec   = "@every 6h"
	claimantBatch = 100
)

type Ingester interface {
	Run(ctx context.Context, query, location string) (ingestion.Summary, error)
}

type ClaimantLister interface {
	List(ctx context.Context, offset, limit int) ([]claimant.Claimant, error)
}

type MatchRunner interface {
	MatchJobsForClaimant(ctx context.Context, claimantID uuid.UUID) ([]match.MatchedJob, error)
}

// MatchCache drops cached match listings once a claimant has been re-matched.
type MatchCache interface {
	InvalidateClaimantMatches(ctx context.Context, claimantID uuid.UUID) error
}

type Notifier interface {
	Publish(eventType string, data any)
}

type Options struct {
	Spec     string
	Query    string
	Location string
}

// Report is the outcome of one cycle.
type Report struct {
	Ingestion        ingestion.Summary
	IngestionErr     error
	ClaimantsMatched int
	ClaimantsFailed  int
	MatchesWritten   int
}

type Scheduler struct {
	cron      *cron.Cron
	opts      Options
	ingester  Ingester
	claimants ClaimantLister
	engine    MatchRunner
	cache     MatchCache
	notifier  Notifier
	logger    *zap.Logger

	// cycles never overlap; a tick that fires mid-cycle waits
	mu sync.Mutex
	wg sync.WaitGroup
}

func New(opts Options, ingester Ingester, claimants ClaimantLister, engine MatchRunner, cache MatchCache, notifier Notifier, log *zap.Logger) *Scheduler {
	if opts.Spec == "" {
		opts.Spec = DefaultSpec
	}
	l := logger.Named(log, "scheduler")
	return &Scheduler{
		cron:      cron.New(cron.WithLogger(cronLogger{l.Sugar()})),
		opts:      opts,
		ingester:  ingester,
		claimants: claimants,
		engine:    engine,
		cache:     cache,
		notifier:  notifier,
		logger:    l,
	}
}

// Start registers the cycle and starts cron. One cycle also runs right away
// in the background so the job pool fills without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.opts.Spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	s.logger.Info("cron started", zap.String("spec", s.opts.Spec))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.RunOnce(ctx)
	}()
	return nil
}

// Stop stops cron and waits for running cycles to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("cron stopped")
}

// RunOnce runs ingestion then re-matches every claimant. A failed ingestion
// does not skip matching: earlier postings are still worth matching.
func (s *Scheduler) RunOnce(ctx context.Context) Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rep Report
	s.logger.Info("cycle started", zap.String("query", s.opts.Query), zap.String("location", s.opts.Location))

	if s.ingester != nil {
		rep.Ingestion, rep.IngestionErr = s.ingester.Run(ctx, s.opts.Query, s.opts.Location)
		switch {
		case errors.Is(rep.IngestionErr, ingestion.ErrIngestionInProgress):
			s.logger.Info("ingestion already running elsewhere")
		case rep.IngestionErr != nil:
			s.logger.Error("ingestion failed", zap.Error(rep.IngestionErr))
		}
	}

	if err := s.matchAll(ctx, &rep); err != nil {
		s.logger.Error("re-matching aborted", zap.Error(err))
	}

	s.logger.Info("cycle completed",
		zap.Int("created", rep.Ingestion.Created),
		zap.Int("claimants_matched", rep.ClaimantsMatched),
		zap.Int("claimants_failed", rep.ClaimantsFailed),
		zap.Int("matches_written", rep.MatchesWritten),
	)
	return rep
}

func (s *Scheduler) matchAll(ctx context.Context, rep *Report) error {
	for offset := 0; ; offset += claimantBatch {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := s.claimants.List(ctx, offset, claimantBatch)
		if err != nil {
			return fmt.Errorf("list claimants: %w", err)
		}

		for _, c := range page {
			out, err := s.engine.MatchJobsForClaimant(ctx, c.ID)
			if err != nil {
				rep.ClaimantsFailed++
				s.logger.Warn("match claimant failed", zap.String("claimant_id", c.ID.String()), zap.Error(err))
				continue
			}
			rep.ClaimantsMatched++
			rep.MatchesWritten += len(out)
			if s.cache != nil {
				if err := s.cache.InvalidateClaimantMatches(ctx, c.ID); err != nil {
					s.logger.Warn("invalidate match cache failed", zap.String("claimant_id", c.ID.String()), zap.Error(err))
				}
			}
			if s.notifier != nil && len(out) > 0 {
				s.notifier.Publish(ws.EventMatchesUpdated, map[string]any{
					"claimant_id": c.ID,
					"count":       len(out),
				})
			}
		}

		if len(page) < claimantBatch {
			return nil
		}
	}
}

type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
