package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobmatch/internal/database"
	"jobmatch/internal/domain/job"

	"github.com/google/uuid"
)

type JobPostingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (job.Posting, error)
	GetByURL(ctx context.Context, jobURL string) (job.Posting, error)
	// CreateIfAbsent stores p unless a posting with the same URL exists. The
	// stored posting is returned either way; created reports which case hit.
	CreateIfAbsent(ctx context.Context, p job.NewPosting) (stored job.Posting, created bool, err error)
	List(ctx context.Context, offset, limit int) ([]job.Posting, error)
	Count(ctx context.Context) (int64, error)
	// All visits every posting in id order, pageSize rows per query.
	All(ctx context.Context, pageSize int, fn func(job.Posting) error) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (job.Posting, error)
}

const jobPostingColumns = `id, title, company_name, location, description, job_url, source_website, date_scraped, date_posted, is_active`

type SQLJobPostingRepository struct {
	db  database.DB
	now func() time.Time
}

func NewSQLJobPostingRepository(db database.DB) *SQLJobPostingRepository {
	return &SQLJobPostingRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func scanPosting(s scanner) (job.Posting, error) {
	var p job.Posting
	err := s.Scan(
		&p.ID,
		&p.Title,
		&p.CompanyName,
		&p.Location,
		&p.Description,
		&p.JobURL,
		&p.SourceWebsite,
		&p.DateScraped,
		&p.DatePosted,
		&p.IsActive,
	)
	return p, err
}

func (r *SQLJobPostingRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Posting, error) {
	p, err := scanPosting(r.db.QueryRow(ctx,
		`SELECT `+jobPostingColumns+` FROM job_postings WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return job.Posting{}, job.ErrNotFound
		}
		return job.Posting{}, err
	}
	return p, nil
}

func (r *SQLJobPostingRepository) GetByURL(ctx context.Context, jobURL string) (job.Posting, error) {
	p, err := scanPosting(r.db.QueryRow(ctx,
		`SELECT `+jobPostingColumns+` FROM job_postings WHERE job_url = $1`, strings.TrimSpace(jobURL)))
	if err != nil {
		if isNoRows(err) {
			return job.Posting{}, job.ErrNotFound
		}
		return job.Posting{}, err
	}
	return p, nil
}

func (r *SQLJobPostingRepository) CreateIfAbsent(ctx context.Context, in job.NewPosting) (job.Posting, bool, error) {
	p := job.Posting{
		ID:            newID(),
		Title:         strings.TrimSpace(in.Title),
		CompanyName:   trimPtr(in.CompanyName),
		Location:      trimPtr(in.Location),
		Description:   strings.TrimSpace(in.Description),
		JobURL:        strings.TrimSpace(in.JobURL),
		SourceWebsite: trimPtr(in.SourceWebsite),
		DateScraped:   r.now(),
		DatePosted:    in.DatePosted,
		IsActive:      true,
	}
	if p.Title == "" || p.JobURL == "" {
		return job.Posting{}, false, fmt.Errorf("%w: title and job url are required", job.ErrInvalidPosting)
	}

	n, err := r.db.Exec(ctx,
		`INSERT INTO job_postings (`+jobPostingColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 ON CONFLICT (job_url) DO NOTHING`,
		p.ID,
		p.Title,
		p.CompanyName,
		p.Location,
		p.Description,
		p.JobURL,
		p.SourceWebsite,
		p.DateScraped,
		p.DatePosted,
		p.IsActive,
	)
	if err != nil {
		return job.Posting{}, false, err
	}
	if n == 1 {
		return p, true, nil
	}

	existing, err := r.GetByURL(ctx, p.JobURL)
	if err != nil {
		return job.Posting{}, false, err
	}
	return existing, false, nil
}

func (r *SQLJobPostingRepository) List(ctx context.Context, offset, limit int) ([]job.Posting, error) {
	offset, limit = normalizePage(offset, limit)

	rows, err := r.db.Query(ctx,
		`SELECT `+jobPostingColumns+` FROM job_postings ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return collectPostings(rows)
}

func (r *SQLJobPostingRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM job_postings`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *SQLJobPostingRepository) All(ctx context.Context, pageSize int, fn func(job.Posting) error) error {
	if pageSize <= 0 {
		pageSize = 500
	}

	after := uuid.Nil
	for {
		rows, err := r.db.Query(ctx,
			`SELECT `+jobPostingColumns+` FROM job_postings WHERE id > $1 ORDER BY id LIMIT $2`,
			after, pageSize,
		)
		if err != nil {
			return err
		}
		// The page is drained before fn runs so fn may use the store on a
		// single-connection backend.
		page, err := collectPostings(rows)
		if err != nil {
			return err
		}

		for _, p := range page {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(p); err != nil {
				return err
			}
		}

		if len(page) < pageSize {
			return nil
		}
		after = page[len(page)-1].ID
	}
}

func (r *SQLJobPostingRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (job.Posting, error) {
	n, err := r.db.Exec(ctx, `UPDATE job_postings SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return job.Posting{}, err
	}
	if n == 0 {
		return job.Posting{}, job.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func collectPostings(rows database.Rows) ([]job.Posting, error) {
	defer rows.Close()

	out := make([]job.Posting, 0)
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
