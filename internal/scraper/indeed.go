package scraper

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"jobmatch/internal/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

const (
	IndeedSourceName = "Indeed"
	indeedPageStep   = 10
)

// PageFetcher returns the rendered HTML of a page. It replaces colly when
// listings are rendered client side.
type PageFetcher interface {
	FetchHTML(ctx context.Context, pageURL string) (string, error)
}

type IndeedConfig struct {
	BaseURL    string
	Pages      int
	Workers    int
	RatePerSec float64
	Timeout    time.Duration
}

// IndeedSource scrapes Indeed-style search result pages. Each card is a
// div.jobsearch-SerpJobCard with h2.title a, span.company, div.location and
// div.summary.
type IndeedSource struct {
	cfg     IndeedConfig
	base    *url.URL
	fetcher PageFetcher
	logger  *zap.Logger
}

func NewIndeedSource(cfg IndeedConfig, fetcher PageFetcher, log *zap.Logger) (*IndeedSource, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid indeed base url %q", cfg.BaseURL)
	}
	if cfg.Pages <= 0 {
		cfg.Pages = 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &IndeedSource{
		cfg:     cfg,
		base:    base,
		fetcher: fetcher,
		logger:  logger.Named(log, "indeed"),
	}, nil
}

func (s *IndeedSource) Name() string {
	return IndeedSourceName
}

// SearchURL builds the listing URL for one result page, page 0 being first.
func (s *IndeedSource) SearchURL(query, location string, page int) string {
	q := url.Values{}
	q.Set("q", strings.TrimSpace(query))
	q.Set("l", strings.TrimSpace(location))
	if page > 0 {
		q.Set("start", strconv.Itoa(page*indeedPageStep))
	}
	u := *s.base
	u.Path = strings.TrimRight(u.Path, "/") + "/jobs"
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *IndeedSource) Fetch(ctx context.Context, query, location string) ([]Record, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query")
	}

	pool := NewWorkerPool(s.cfg.Workers, s.cfg.Pages)
	pool.SetRateLimit(s.cfg.RatePerSec)
	results := pool.Run(ctx)

	var mu sync.Mutex
	byPage := make(map[int][]Record, s.cfg.Pages)

	for page := 0; page < s.cfg.Pages; page++ {
		page := page
		pageURL := s.SearchURL(query, location, page)
		pool.Submit(func(ctx context.Context) error {
			recs, err := s.scrapePage(ctx, pageURL)
			if err != nil {
				return fmt.Errorf("page %d: %w", page, err)
			}
			mu.Lock()
			byPage[page] = recs
			mu.Unlock()
			return nil
		})
	}
	pool.Close()

	var firstErr error
	failed := 0
	for res := range results {
		if res.Err != nil {
			failed++
			if firstErr == nil {
				firstErr = res.Err
			}
			s.logger.Warn("listing page failed", zap.Error(res.Err))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failed == s.cfg.Pages {
		return nil, firstErr
	}

	pages := make([]int, 0, len(byPage))
	for p := range byPage {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	out := make([]Record, 0)
	for _, p := range pages {
		out = append(out, byPage[p]...)
	}
	s.logger.Info("listing scraped",
		zap.String("query", query),
		zap.String("location", location),
		zap.Int("pages", s.cfg.Pages),
		zap.Int("records", len(out)),
	)
	return out, nil
}

func (s *IndeedSource) scrapePage(ctx context.Context, pageURL string) ([]Record, error) {
	if s.fetcher != nil {
		return s.scrapePageRendered(ctx, pageURL)
	}
	return s.scrapePageColly(ctx, pageURL)
}

func (s *IndeedSource) scrapePageColly(ctx context.Context, pageURL string) ([]Record, error) {
	c := colly.NewCollector(
		colly.AllowedDomains(s.base.Hostname()),
	)
	c.SetRequestTimeout(s.cfg.Timeout)

	out := make([]Record, 0)
	c.OnHTML("div.jobsearch-SerpJobCard", func(e *colly.HTMLElement) {
		rec, ok := parseCard(e.DOM, e.Request.URL)
		if !ok {
			s.logger.Warn("card without title or url", zap.String("page", pageURL))
			return
		}
		out = append(out, rec)
	})

	var reqErr error
	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	c.OnRequest(func(r *colly.Request) {
		for k, v := range httpHeaders() {
			r.Headers.Set(k, v)
		}
	})

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err := c.Visit(pageURL); err != nil {
		return nil, err
	}
	c.Wait()
	if reqErr != nil {
		return nil, reqErr
	}
	return out, nil
}

func (s *IndeedSource) scrapePageRendered(ctx context.Context, pageURL string) ([]Record, error) {
	body, err := s.fetcher.FetchHTML(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	pageBase, err := url.Parse(pageURL)
	if err != nil {
		pageBase = s.base
	}
	return parseCards(doc.Selection, pageBase, s.logger), nil
}

func parseCards(sel *goquery.Selection, base *url.URL, log *zap.Logger) []Record {
	out := make([]Record, 0)
	sel.Find("div.jobsearch-SerpJobCard").Each(func(_ int, card *goquery.Selection) {
		rec, ok := parseCard(card, base)
		if !ok {
			log.Warn("card without title or url")
			return
		}
		out = append(out, rec)
	})
	return out
}

// parseCard reads one result card. Cards missing a title or link are dropped.
func parseCard(card *goquery.Selection, base *url.URL) (Record, bool) {
	heading := card.Find("h2.title").First()
	link := heading.Find("a").First()
	if link.Length() == 0 && goquery.NodeName(heading) == "a" {
		link = heading
	}

	title, _ := link.Attr("title")
	title = pickNonEmpty(title, heading.Text())
	href, _ := link.Attr("href")
	jobURL := resolveURL(base, href)
	if title == "" || jobURL == "" {
		return Record{}, false
	}

	var description string
	if summary := card.Find("div.summary").First(); summary.Length() > 0 {
		if inner, err := summary.Html(); err == nil {
			description = htmlToText(inner)
		} else {
			description = strings.TrimSpace(summary.Text())
		}
	}

	return Record{
		Title:         title,
		CompanyName:   strings.TrimSpace(card.Find("span.company").First().Text()),
		Location:      strings.TrimSpace(card.Find("div.location").First().Text()),
		Description:   description,
		JobURL:        jobURL,
		SourceWebsite: IndeedSourceName,
	}, true
}
