package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jobmatch/internal/logger"

	"go.uber.org/zap"
)

const RemoteSourceName = "Remote"

// RemoteSource asks an external scraping service for postings. The service
// answers POST {base}/scrape with {"jobs": [...]}.
type RemoteSource struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

type remoteScrapeRequest struct {
	Query    string `json:"query"`
	Location string `json:"location"`
}

type remoteJob struct {
	Title         string `json:"title"`
	CompanyName   string `json:"company_name"`
	Location      string `json:"location"`
	Description   string `json:"description"`
	JobURL        string `json:"job_url"`
	SourceWebsite string `json:"source_website"`
	DatePosted    string `json:"date_posted"`
}

type remoteScrapeResponse struct {
	Jobs []remoteJob `json:"jobs"`
}

func NewRemoteSource(baseURL string, timeout time.Duration, log *zap.Logger) (*RemoteSource, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("empty remote scraper url")
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &RemoteSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.Named(log, "remote"),
	}, nil
}

func (s *RemoteSource) Name() string {
	return RemoteSourceName
}

func (s *RemoteSource) Fetch(ctx context.Context, query, location string) ([]Record, error) {
	if s == nil || s.client == nil {
		return nil, errors.New("nil remote source")
	}
	endpoint := s.baseURL + "/scrape"

	b, err := json.Marshal(remoteScrapeRequest{Query: strings.TrimSpace(query), Location: strings.TrimSpace(location)})
	if err != nil {
		return nil, err
	}

	body, err := doWithRetry(ctx, s.client, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return req, nil
	}, 3)
	if err != nil {
		s.logger.Error("remote scrape failed", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("remote scrape: %w", err)
	}

	var resp remoteScrapeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode remote scrape response: %w", err)
	}

	base, _ := url.Parse(s.baseURL)
	out := make([]Record, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		out = append(out, Record{
			Title:         strings.TrimSpace(j.Title),
			CompanyName:   strings.TrimSpace(j.CompanyName),
			Location:      strings.TrimSpace(j.Location),
			Description:   htmlToText(j.Description),
			JobURL:        resolveURL(base, j.JobURL),
			SourceWebsite: pickNonEmpty(j.SourceWebsite, RemoteSourceName),
			DatePosted:    parseRFC3339OrNil(j.DatePosted),
		})
	}
	return out, nil
}
