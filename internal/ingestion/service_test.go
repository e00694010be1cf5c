package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"jobmatch/internal/domain/job"
	"jobmatch/internal/scraper"
	"jobmatch/internal/ws"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	records []scraper.Record
	err     error
}

func (f fakeSource) Name() string { return "Fake" }
func (f fakeSource) Fetch(context.Context, string, string) ([]scraper.Record, error) {
	return f.records, f.err
}

type fakeJobStore struct {
	byURL map[string]job.Posting
	err   map[string]error
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{byURL: map[string]job.Posting{}, err: map[string]error{}}
}

func (f *fakeJobStore) CreateIfAbsent(_ context.Context, p job.NewPosting) (job.Posting, bool, error) {
	if err := f.err[p.JobURL]; err != nil {
		return job.Posting{}, false, err
	}
	if existing, ok := f.byURL[p.JobURL]; ok {
		return existing, false, nil
	}
	stored := job.Posting{ID: uuid.New(), Title: p.Title, JobURL: p.JobURL, IsActive: true}
	f.byURL[p.JobURL] = stored
	return stored, true, nil
}

type fakeLocker struct {
	mu      sync.Mutex
	held    map[string]bool
	err     error
	deleted []string
}

func (f *fakeLocker) SetIfNotExists(_ context.Context, key, _ string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if f.held[key] {
		return false, nil
	}
	f.held[key] = true
	return true, nil
}

func (f *fakeLocker) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.held, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeNotifier struct {
	events []string
	data   []any
}

func (f *fakeNotifier) Publish(eventType string, data any) {
	f.events = append(f.events, eventType)
	f.data = append(f.data, data)
}

func TestService_Run(t *testing.T) {
	src := fakeSource{records: []scraper.Record{
		{Title: "Python Dev", JobURL: "https://jobs.example.com/1", Location: "London", SourceWebsite: "Indeed"},
		{Title: "Python Dev again", JobURL: "https://jobs.example.com/1"},
		{Title: "No URL"},
		{Title: "Relative", JobURL: "/jobs/2"},
		{Title: "", JobURL: "https://jobs.example.com/3"},
		{Title: "Broken", JobURL: "https://jobs.example.com/4"},
		{Title: "Go Dev", JobURL: "https://jobs.example.com/5"},
	}}
	store := newFakeJobStore()
	store.err["https://jobs.example.com/4"] = errors.New("disk full")
	locker := &fakeLocker{held: map[string]bool{}}
	notifier := &fakeNotifier{}

	svc := NewService(src, store, locker, notifier, nil)
	sum, err := svc.Run(context.Background(), " python developer ", "London")
	require.NoError(t, err)

	assert.Equal(t, Summary{
		Source:   "Fake",
		Query:    "python developer",
		Location: "London",
		Found:    7,
		Created:  2,
		Existing: 1,
		Failed:   4,
	}, sum)
	assert.Equal(t, []string{ws.EventJobsIngested}, notifier.events)
	assert.Equal(t, []string{"ingest:lock:python developer:london"}, locker.deleted)
	assert.Empty(t, locker.held)
}

func TestService_RunInProgress(t *testing.T) {
	locker := &fakeLocker{held: map[string]bool{"ingest:lock:python developer:london": true}}
	svc := NewService(fakeSource{}, newFakeJobStore(), locker, nil, nil)

	_, err := svc.Run(context.Background(), "python developer", "london")
	assert.ErrorIs(t, err, ErrIngestionInProgress)
	assert.Empty(t, locker.deleted)
}

func TestService_RunLockErrorDoesNotBlock(t *testing.T) {
	locker := &fakeLocker{held: map[string]bool{}, err: errors.New("redis down")}
	svc := NewService(fakeSource{records: []scraper.Record{{Title: "A", JobURL: "https://a.example/1"}}}, newFakeJobStore(), locker, nil, nil)

	sum, err := svc.Run(context.Background(), "a", "")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Created)
}

func TestService_RunSourceError(t *testing.T) {
	boom := errors.New("blocked")
	locker := &fakeLocker{held: map[string]bool{}}
	svc := NewService(fakeSource{err: boom}, newFakeJobStore(), locker, nil, nil)

	_, err := svc.Run(context.Background(), "a", "b")
	assert.ErrorIs(t, err, boom)
	assert.Len(t, locker.deleted, 1)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	p, err := Normalize(scraper.Record{
		Title:       "  Data Analyst ",
		CompanyName: " ",
		Location:    " Leeds ",
		Description: " numbers ",
		JobURL:      " https://jobs.example.com/x?id=1 ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Data Analyst", p.Title)
	assert.Nil(t, p.CompanyName)
	assert.Equal(t, "Leeds", *p.Location)
	assert.Equal(t, "numbers", p.Description)
	assert.Equal(t, "https://jobs.example.com/x?id=1", p.JobURL)
	assert.Nil(t, p.SourceWebsite)

	for _, bad := range []string{"", "/rel", "ftp://x.example/a", "https://"} {
		_, err := Normalize(scraper.Record{Title: "t", JobURL: bad})
		assert.True(t, errors.Is(err, job.ErrInvalidPosting), bad)
	}
}
