package seeder

import (
	"context"
	"time"

	"jobmatch/internal/domain/job"
)

const demoSource = "Seed"

type JobPostingsSeeder struct{}

func (JobPostingsSeeder) Name() string { return "job_postings" }

func (JobPostingsSeeder) Run(ctx context.Context, jobs JobCreator) (int, error) {
	posted := time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Hour)

	items := []struct {
		Title       string
		Company     string
		Location    string
		Description string
		URL         string
	}{
		{
			Title:       "Python Engineer",
			Company:     "Northwind Analytics",
			Location:    "London",
			Description: "Requires Python, FastAPI experience. Build internal APIs backed by PostgreSQL.",
			URL:         "https://jobs.example.com/seed/python-engineer-london",
		},
		{
			Title:       "Backend Developer (Python)",
			Company:     "Pennine Health",
			Location:    "Manchester",
			Description: "Django and FastAPI services, SQL reporting, Docker deployments.",
			URL:         "https://jobs.example.com/seed/backend-python-manchester",
		},
		{
			Title:       "Data Analyst",
			Company:     "Harbour Insights",
			Location:    "Leeds",
			Description: "SQL, Excel and Tableau dashboards for operations teams.",
			URL:         "https://jobs.example.com/seed/data-analyst-leeds",
		},
		{
			Title:       "Platform Engineer",
			Company:     "Cloudmoor",
			Location:    "Bristol",
			Description: "Kubernetes, Terraform and Golang tooling for the deployment platform.",
			URL:         "https://jobs.example.com/seed/platform-engineer-bristol",
		},
		{
			Title:       "Customer Support Advisor",
			Company:     "Brightline Energy",
			Location:    "Glasgow",
			Description: "Handle customer enquiries by phone and email, CRM updates, billing questions.",
			URL:         "https://jobs.example.com/seed/support-advisor-glasgow",
		},
		{
			Title:       "Warehouse Operative",
			Company:     "Midlands Logistics",
			Location:    "Birmingham",
			Description: "Picking, packing and forklift operation. Forklift licence preferred.",
			URL:         "https://jobs.example.com/seed/warehouse-operative-birmingham",
		},
	}

	created := 0
	for _, it := range items {
		company, location, source := it.Company, it.Location, demoSource
		datePosted := posted
		_, ok, err := jobs.CreateIfAbsent(ctx, job.NewPosting{
			Title:         it.Title,
			CompanyName:   &company,
			Location:      &location,
			Description:   it.Description,
			JobURL:        it.URL,
			SourceWebsite: &source,
			DatePosted:    &datePosted,
		})
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}
