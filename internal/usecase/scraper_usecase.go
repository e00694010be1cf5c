package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jobmatch/internal/ingestion"
	"jobmatch/internal/logger"

	"go.uber.org/zap"
)

const (
	DefaultScrapeQuery    = "python developer"
	DefaultScrapeLocation = "london"
)

type Ingester interface {
	Run(ctx context.Context, query, location string) (ingestion.Summary, error)
}

type ScraperUsecase interface {
	Trigger(ctx context.Context, jobTitle, location string) (ingestion.Summary, error)
}

type Scraper struct {
	ingester Ingester
	logger   *zap.Logger
}

func NewScraperUsecase(ingester Ingester, log *zap.Logger) *Scraper {
	return &Scraper{ingester: ingester, logger: logger.Named(log, "scraper")}
}

// Trigger runs one ingestion synchronously. Blank inputs fall back to the
// default query and location.
func (u *Scraper) Trigger(ctx context.Context, jobTitle, location string) (ingestion.Summary, error) {
	jobTitle = strings.TrimSpace(jobTitle)
	if jobTitle == "" {
		jobTitle = DefaultScrapeQuery
	}
	location = strings.TrimSpace(location)
	if location == "" {
		location = DefaultScrapeLocation
	}

	sum, err := u.ingester.Run(ctx, jobTitle, location)
	if err != nil {
		if errors.Is(err, ingestion.ErrIngestionInProgress) {
			return sum, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		u.logger.Error("scrape trigger failed", zap.String("query", jobTitle), zap.String("location", location), zap.Error(err))
		return sum, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return sum, nil
}
