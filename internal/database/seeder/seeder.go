package seeder

import (
	"context"

	"jobmatch/internal/domain/job"
)

// JobCreator is the write side of the job store the seeders go through, so
// demo data obeys the same first-write-wins rule as ingestion.
type JobCreator interface {
	CreateIfAbsent(ctx context.Context, p job.NewPosting) (job.Posting, bool, error)
}

type Seeder interface {
	Name() string
	Run(ctx context.Context, jobs JobCreator) (created int, err error)
}
