package seeder

import (
	"context"
	"errors"
	"testing"

	"jobmatch/internal/domain/job"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memJobs struct {
	byURL map[string]job.Posting
	fail  bool
}

func (m *memJobs) CreateIfAbsent(_ context.Context, p job.NewPosting) (job.Posting, bool, error) {
	if m.fail {
		return job.Posting{}, false, errors.New("read-only")
	}
	if got, ok := m.byURL[p.JobURL]; ok {
		return got, false, nil
	}
	out := job.Posting{ID: uuid.New(), Title: p.Title, JobURL: p.JobURL, IsActive: true}
	m.byURL[p.JobURL] = out
	return out, true, nil
}

func TestRunner_IsIdempotent(t *testing.T) {
	store := &memJobs{byURL: map[string]job.Posting{}}
	r := Runner{Seeders: Defaults()}

	require.NoError(t, r.Run(context.Background(), store))
	first := len(store.byURL)
	assert.Equal(t, 6, first)

	require.NoError(t, r.Run(context.Background(), store))
	assert.Equal(t, first, len(store.byURL))

	n, err := JobPostingsSeeder{}.Run(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRunner_Errors(t *testing.T) {
	err := Runner{Seeders: Defaults()}.Run(context.Background(), &memJobs{fail: true})
	assert.ErrorContains(t, err, "seed job_postings")

	assert.Error(t, Runner{}.Run(context.Background(), nil))
}
