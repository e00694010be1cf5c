package matching

import (
	"context"
	"errors"
	"testing"

	"jobmatch/internal/domain/claimant"
	"jobmatch/internal/domain/job"
	"jobmatch/internal/domain/match"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeClaimants struct {
	c   claimant.Claimant
	err error
}

func (f fakeClaimants) GetWithDocuments(_ context.Context, id uuid.UUID) (claimant.Claimant, error) {
	if f.err != nil {
		return claimant.Claimant{}, f.err
	}
	if f.c.ID != id {
		return claimant.Claimant{}, claimant.ErrNotFound
	}
	return f.c, nil
}

type fakeJobs struct {
	postings  []job.Posting
	err       error
	calls     int
	pageSizes []int
}

func (f *fakeJobs) All(_ context.Context, pageSize int, fn func(job.Posting) error) error {
	f.calls++
	f.pageSizes = append(f.pageSizes, pageSize)
	if f.err != nil {
		return f.err
	}
	for _, p := range f.postings {
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

type fakeMatches struct {
	upserts []match.Upsert
	failFor map[uuid.UUID]bool
}

func (f *fakeMatches) Upsert(_ context.Context, in match.Upsert) (match.MatchedJob, error) {
	f.upserts = append(f.upserts, in)
	if f.failFor[in.JobPostingID] {
		return match.MatchedJob{}, errors.New("db down")
	}
	notes := in.Notes
	return match.MatchedJob{
		ID:           uuid.New(),
		ClaimantID:   in.ClaimantID,
		JobPostingID: in.JobPostingID,
		MatchScore:   in.Score,
		Status:       in.Status,
		Notes:        &notes,
	}, nil
}

func strPtr(s string) *string { return &s }

func cvClaimant(target string, cv string, explicit string) claimant.Claimant {
	c := claimant.Claimant{ID: uuid.New(), Name: "Ada", Email: "ada@example.com"}
	if target != "" {
		c.TargetLocation = strPtr(target)
	}
	if explicit != "" {
		c.SearchKeywords = strPtr(explicit)
	}
	if cv != "" {
		c.Documents = []claimant.Document{{DocumentType: "CV", RawText: strPtr(cv)}}
	}
	return c
}

func posting(title, desc, location string, active bool) job.Posting {
	p := job.Posting{ID: uuid.New(), Title: title, Description: desc, JobURL: "https://jobs.example.com/" + title, IsActive: active}
	if location != "" {
		p.Location = strPtr(location)
	}
	return p
}

const thresholdCV = "Experienced python developer with FastAPI and SQL skills"

func TestEngine_ThresholdScenario(t *testing.T) {
	c := cvClaimant("", thresholdCV, "")
	p := posting("Python Engineer", "Requires Python, FastAPI experience", "London", true)
	jobs := &fakeJobs{postings: []job.Posting{p}}
	matches := &fakeMatches{}

	e := NewEngine(fakeClaimants{c: c}, jobs, matches, Config{}, nil)
	got, err := e.MatchJobsForClaimant(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.GreaterOrEqual(t, got[0].MatchScore, 2.0)
	assert.Equal(t, match.StatusNew, got[0].Status)
	assert.Equal(t, p.ID, got[0].JobPostingID)
	assert.Equal(t, "Automatic match. Score: 2. Common keywords: fastapi, python...", *got[0].Notes)
	assert.Equal(t, []int{500}, jobs.pageSizes)
}

func TestEngine_LocationFilter(t *testing.T) {
	c := cvClaimant("Manchester", thresholdCV, "")
	london := posting("Python Engineer", "Requires Python, FastAPI experience", "London", true)
	unknown := posting("Python Developer", "Python FastAPI", "", true)
	manchester := posting("FastAPI Python Dev", "python fastapi sql", "Greater Manchester", true)

	matches := &fakeMatches{}
	e := NewEngine(fakeClaimants{c: c}, &fakeJobs{postings: []job.Posting{london, unknown, manchester}}, matches, Config{}, nil)

	got, err := e.MatchJobsForClaimant(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, manchester.ID, got[0].JobPostingID)
	assert.Contains(t, *got[0].Notes, " Location matched: 'Manchester'.")
}

func TestEngine_NoKeywordsTouchesNoStore(t *testing.T) {
	c := cvClaimant("", "", "")
	c.Documents = []claimant.Document{{DocumentType: "cover letter", RawText: strPtr("python fastapi sql")}}

	jobs := &fakeJobs{postings: []job.Posting{posting("Python", "python", "", true)}}
	matches := &fakeMatches{}
	e := NewEngine(fakeClaimants{c: c}, jobs, matches, Config{}, nil)

	got, err := e.MatchJobsForClaimant(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.Equal(t, 0, jobs.calls)
	assert.Empty(t, matches.upserts)
}

func TestEngine_InactiveJobExcluded(t *testing.T) {
	c := cvClaimant("", thresholdCV, "")
	inactive := posting("Python Engineer", "Requires Python, FastAPI experience", "", false)

	matches := &fakeMatches{}
	e := NewEngine(fakeClaimants{c: c}, &fakeJobs{postings: []job.Posting{inactive}}, matches, Config{}, nil)

	got, err := e.MatchJobsForClaimant(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, matches.upserts)
}

func TestEngine_ExplicitKeywordsAndMinScore(t *testing.T) {
	c := cvClaimant("", "", " Golang, Kubernetes ,, ")
	one := posting("Golang developer", "", "", true)
	two := posting("Golang platform", "kubernetes operators", "", true)

	matches := &fakeMatches{}
	e := NewEngine(fakeClaimants{c: c}, &fakeJobs{postings: []job.Posting{one, two}}, matches, Config{MinScore: 1, NotesKeywordLimit: 1}, nil)

	got, err := e.MatchJobsForClaimant(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, one.ID, got[0].JobPostingID)
	assert.Equal(t, two.ID, got[1].JobPostingID)
	assert.Equal(t, "Automatic match. Score: 2. Common keywords: golang...", *got[1].Notes)
}

func TestEngine_UpsertFailureIsSkipped(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	c := cvClaimant("", thresholdCV, "")
	bad := posting("Python Engineer", "Requires Python, FastAPI experience", "", true)
	good := posting("FastAPI Python Dev", "python fastapi sql", "", true)

	matches := &fakeMatches{failFor: map[uuid.UUID]bool{bad.ID: true}}
	e := NewEngine(fakeClaimants{c: c}, &fakeJobs{postings: []job.Posting{bad, good}}, matches, Config{}, zap.New(core))

	got, err := e.MatchJobsForClaimant(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, good.ID, got[0].JobPostingID)
	assert.Len(t, matches.upserts, 2)
	assert.Equal(t, 1, logs.FilterMessage("upsert match failed").Len())
}

func TestEngine_MissingClaimantIsEmpty(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	jobs := &fakeJobs{}
	e := NewEngine(fakeClaimants{}, jobs, &fakeMatches{}, Config{}, zap.New(core))

	got, err := e.MatchJobsForClaimant(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, jobs.calls)
	assert.Equal(t, 1, logs.FilterMessage("claimant not found, nothing to match").Len())
}

func TestEngine_SystemicErrors(t *testing.T) {
	boom := errors.New("connection refused")

	e := NewEngine(fakeClaimants{err: boom}, &fakeJobs{}, &fakeMatches{}, Config{}, nil)
	_, err := e.MatchJobsForClaimant(context.Background(), uuid.New())
	assert.ErrorIs(t, err, boom)

	c := cvClaimant("", thresholdCV, "")
	e = NewEngine(fakeClaimants{c: c}, &fakeJobs{err: boom}, &fakeMatches{}, Config{}, nil)
	_, err = e.MatchJobsForClaimant(context.Background(), c.ID)
	assert.ErrorIs(t, err, boom)
}
