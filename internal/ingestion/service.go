package ingestion

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"jobmatch/internal/domain/job"
	"jobmatch/internal/infrastructure/cache"
	"jobmatch/internal/logger"
	"jobmatch/internal/scraper"
	"jobmatch/internal/ws"

	"go.uber.org/zap"
)

var ErrIngestionInProgress = errors.New("ingestion already in progress")

const defaultLockTTL = 2 * time.Minute

type JobStore interface {
	CreateIfAbsent(ctx context.Context, p job.NewPosting) (job.Posting, bool, error)
}

type Locker interface {
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

type Notifier interface {
	Publish(eventType string, data any)
}

type Summary struct {
	Source   string `json:"source"`
	Query    string `json:"query"`
	Location string `json:"location"`
	Found    int    `json:"found"`
	Created  int    `json:"created"`
	Existing int    `json:"existing"`
	Failed   int    `json:"failed"`
}

// Service pulls postings from a source into the job store. Records are
// inserted first-write-wins, so re-running a query never rewrites postings.
type Service struct {
	source   scraper.Source
	jobs     JobStore
	locker   Locker
	notifier Notifier
	lockTTL  time.Duration
	logger   *zap.Logger
}

func NewService(source scraper.Source, jobs JobStore, locker Locker, notifier Notifier, log *zap.Logger) *Service {
	return &Service{
		source:   source,
		jobs:     jobs,
		locker:   locker,
		notifier: notifier,
		lockTTL:  defaultLockTTL,
		logger:   logger.Named(log, "ingestion"),
	}
}

func (s *Service) Run(ctx context.Context, query, location string) (Summary, error) {
	query = strings.TrimSpace(query)
	location = strings.TrimSpace(location)
	sum := Summary{Source: s.source.Name(), Query: query, Location: location}
	log := s.logger.With(zap.String("source", sum.Source), zap.String("query", query), zap.String("location", location))

	if s.locker != nil {
		key := cache.IngestLockKey(query, location)
		ok, err := s.locker.SetIfNotExists(ctx, key, time.Now().UTC().Format(time.RFC3339), s.lockTTL)
		switch {
		case err != nil:
			log.Warn("ingestion lock unavailable, continuing without it", zap.Error(err))
		case !ok:
			return sum, ErrIngestionInProgress
		default:
			defer func() {
				if err := s.locker.Delete(context.Background(), key); err != nil {
					log.Warn("release ingestion lock failed", zap.Error(err))
				}
			}()
		}
	}

	records, err := s.source.Fetch(ctx, query, location)
	if err != nil {
		return sum, fmt.Errorf("fetch from %s: %w", sum.Source, err)
	}
	sum.Found = len(records)

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		p, err := Normalize(rec)
		if err != nil {
			sum.Failed++
			log.Warn("record rejected", zap.String("title", logger.TruncateForLog(rec.Title, 80)), zap.Error(err))
			continue
		}

		_, created, err := s.jobs.CreateIfAbsent(ctx, p)
		if err != nil {
			sum.Failed++
			log.Error("store posting failed", zap.String("job_url", p.JobURL), zap.Error(err))
			continue
		}
		if created {
			sum.Created++
		} else {
			sum.Existing++
		}
	}

	log.Info("ingestion completed",
		zap.Int("found", sum.Found),
		zap.Int("created", sum.Created),
		zap.Int("existing", sum.Existing),
		zap.Int("failed", sum.Failed),
	)
	if s.notifier != nil {
		s.notifier.Publish(ws.EventJobsIngested, sum)
	}
	return sum, nil
}

// Normalize trims a scraped record into a posting. The job URL must be an
// absolute http(s) URL.
func Normalize(rec scraper.Record) (job.NewPosting, error) {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		return job.NewPosting{}, fmt.Errorf("%w: missing title", job.ErrInvalidPosting)
	}

	raw := strings.TrimSpace(rec.JobURL)
	u, err := url.Parse(raw)
	if raw == "" || err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return job.NewPosting{}, fmt.Errorf("%w: job url %q is not absolute", job.ErrInvalidPosting, raw)
	}

	return job.NewPosting{
		Title:         title,
		CompanyName:   optional(rec.CompanyName),
		Location:      optional(rec.Location),
		Description:   strings.TrimSpace(rec.Description),
		JobURL:        u.String(),
		SourceWebsite: optional(rec.SourceWebsite),
		DatePosted:    rec.DatePosted,
	}, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
