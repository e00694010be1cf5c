package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingHTML = `
<html>
<body>
	<div id="resultsCol">
		<div class="jobsearch-SerpJobCard">
			<h2 class="title"><a href="/rc/clk?jk=123" title="Software Engineer">Software Engineer</a></h2>
			<span class="company">Tech Solutions Inc.</span>
			<div class="location">London</div>
			<div class="summary">Develop amazing software.</div>
		</div>
		<div class="jobsearch-SerpJobCard">
			<h2 class="title"><a href="/rc/clk?jk=456">Data Analyst</a></h2>
			<span class="company"> Data Insights Ltd. </span>
			<div class="location">Manchester</div>
			<div class="summary"><ul><li>Analyze <b>interesting</b> data.</li></ul></div>
		</div>
		<div class="jobsearch-SerpJobCard">
			<h2 class="title">No link here</h2>
		</div>
	</div>
</body>
</html>`

func TestIndeedSource_Colly(t *testing.T) {
	var hits atomic.Int32
	var mu sync.Mutex
	var gotQuery, gotLocation, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/jobs" {
			http.NotFound(w, r)
			return
		}
		mu.Lock()
		gotQuery = r.URL.Query().Get("q")
		gotLocation = r.URL.Query().Get("l")
		gotUA = r.Header.Get("User-Agent")
		mu.Unlock()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(listingHTML))
	}))
	defer srv.Close()

	src, err := NewIndeedSource(IndeedConfig{BaseURL: srv.URL}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, IndeedSourceName, src.Name())

	recs, err := src.Fetch(context.Background(), "software engineer", "London")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "software engineer", gotQuery)
	assert.Equal(t, "London", gotLocation)
	assert.Contains(t, gotUA, "Mozilla/5.0")
	assert.Equal(t, int32(1), hits.Load())

	assert.Equal(t, "Software Engineer", recs[0].Title)
	assert.Equal(t, "Tech Solutions Inc.", recs[0].CompanyName)
	assert.Equal(t, "London", recs[0].Location)
	assert.Equal(t, "Develop amazing software.", recs[0].Description)
	assert.Equal(t, srv.URL+"/rc/clk?jk=123", recs[0].JobURL)
	assert.Equal(t, "Indeed", recs[0].SourceWebsite)

	assert.Equal(t, "Data Analyst", recs[1].Title)
	assert.Equal(t, "Data Insights Ltd.", recs[1].CompanyName)
	assert.Contains(t, recs[1].Description, "Analyze **interesting** data.")
}

func TestIndeedSource_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	src, err := NewIndeedSource(IndeedConfig{BaseURL: srv.URL, Pages: 2, Workers: 2}, nil, nil)
	require.NoError(t, err)

	_, err = src.Fetch(context.Background(), "python developer", "london")
	require.Error(t, err)
}

type fakeFetcher struct {
	pages map[string]string
	urls  []string
}

func (f *fakeFetcher) FetchHTML(_ context.Context, pageURL string) (string, error) {
	f.urls = append(f.urls, pageURL)
	body, ok := f.pages[pageURL]
	if !ok {
		return "", errors.New("not rendered")
	}
	return body, nil
}

func TestIndeedSource_RenderedPages(t *testing.T) {
	src, err := NewIndeedSource(IndeedConfig{BaseURL: "https://www.indeed.example", Pages: 2, Workers: 1}, nil, nil)
	require.NoError(t, err)

	first := src.SearchURL("python developer", "london", 0)
	second := src.SearchURL("python developer", "london", 1)
	assert.Equal(t, "https://www.indeed.example/jobs?l=london&q=python+developer", first)
	assert.Equal(t, "https://www.indeed.example/jobs?l=london&q=python+developer&start=10", second)

	fetcher := &fakeFetcher{pages: map[string]string{first: listingHTML}}
	src.fetcher = fetcher

	recs, err := src.Fetch(context.Background(), "python developer", "london")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "https://www.indeed.example/rc/clk?jk=123", recs[0].JobURL)
	assert.Len(t, fetcher.urls, 2)

	_, err = src.Fetch(context.Background(), " ", "london")
	require.Error(t, err)
}

func TestNewIndeedSource_InvalidBase(t *testing.T) {
	_, err := NewIndeedSource(IndeedConfig{BaseURL: "not a url"}, nil, nil)
	require.Error(t, err)
}

func TestRemoteSource_Fetch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "/scrape", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req remoteScrapeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "go developer", req.Query)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"jobs": []map[string]any{
				{
					"title":          " Go Developer ",
					"company_name":   "Acme",
					"location":       "Leeds",
					"description":    "<p>Go and <em>SQL</em></p>",
					"job_url":        "/jobs/1",
					"source_website": "Reed",
					"date_posted":    "2024-05-01T10:00:00Z",
				},
				{"title": "No URL"},
			},
		})
	}))
	defer srv.Close()

	src, err := NewRemoteSource(srv.URL+"/", time.Second, nil)
	require.NoError(t, err)

	recs, err := src.Fetch(context.Background(), " go developer ", "leeds")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, int32(2), calls.Load())

	assert.Equal(t, "Go Developer", recs[0].Title)
	assert.Equal(t, srv.URL+"/jobs/1", recs[0].JobURL)
	assert.Equal(t, "Reed", recs[0].SourceWebsite)
	assert.Equal(t, "Go and *SQL*", recs[0].Description)
	require.NotNil(t, recs[0].DatePosted)
	assert.Equal(t, 2024, recs[0].DatePosted.Year())

	assert.Equal(t, "", recs[1].JobURL)
	assert.Equal(t, RemoteSourceName, recs[1].SourceWebsite)

	_, err = NewRemoteSource(" ", 0, nil)
	require.Error(t, err)
}

func TestWorkerPool_RunsAllTasks(t *testing.T) {
	pool := NewWorkerPool(3, 10)
	pool.SetRateLimit(0)
	results := pool.Run(context.Background())

	var ran atomic.Int32
	boom := errors.New("boom")
	for i := 0; i < 10; i++ {
		i := i
		pool.Submit(func(context.Context) error {
			ran.Add(1)
			if i == 4 {
				return boom
			}
			return nil
		})
	}
	pool.Close()

	errs := 0
	for res := range results {
		if res.Err != nil {
			errs++
			assert.ErrorIs(t, res.Err, boom)
		}
	}
	assert.Equal(t, int32(10), ran.Load())
	assert.Equal(t, 1, errs)
}

func TestWorkerPool_RateLimit(t *testing.T) {
	pool := NewWorkerPool(4, 4)
	pool.SetRateLimit(20)
	results := pool.Run(context.Background())

	start := time.Now()
	for i := 0; i < 4; i++ {
		pool.Submit(func(context.Context) error { return nil })
	}
	pool.Close()
	for range results {
	}
	// burst of one, then one start every 50ms
	assert.GreaterOrEqual(t, time.Since(start), 140*time.Millisecond)
}

func TestResolveURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", resolveURL(nil, "/relative"))
	assert.Equal(t, "", resolveURL(nil, "javascript:void(0)"))
	assert.Equal(t, "https://a.example/x", resolveURL(nil, " https://a.example/x "))
}
