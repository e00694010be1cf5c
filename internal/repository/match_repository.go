package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobmatch/internal/database"
	"jobmatch/internal/domain/job"
	"jobmatch/internal/domain/match"

	"github.com/google/uuid"
)

type MatchRepository interface {
	Get(ctx context.Context, claimantID, jobPostingID uuid.UUID) (match.MatchedJob, error)
	// Upsert creates the pair's record or overwrites score, status, notes and
	// matched_at of the existing one. The record id never changes.
	Upsert(ctx context.Context, in match.Upsert) (match.MatchedJob, error)
	ListForClaimant(ctx context.Context, claimantID uuid.UUID, offset, limit int) ([]match.MatchedJob, error)
	CountForClaimant(ctx context.Context, claimantID uuid.UUID) (int64, error)
	List(ctx context.Context, offset, limit int) ([]match.MatchedJob, error)
}

const matchColumns = `id, claimant_id, job_posting_id, match_score, status, notes, matched_at`

type SQLMatchRepository struct {
	db  database.DB
	now func() time.Time
}

func NewSQLMatchRepository(db database.DB) *SQLMatchRepository {
	return &SQLMatchRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func matchDest(m *match.MatchedJob) []any {
	return []any{
		&m.ID,
		&m.ClaimantID,
		&m.JobPostingID,
		&m.MatchScore,
		&m.Status,
		&m.Notes,
		&m.MatchedAt,
	}
}

func scanMatch(s scanner) (match.MatchedJob, error) {
	var m match.MatchedJob
	err := s.Scan(matchDest(&m)...)
	return m, err
}

func scanMatchWithJob(s scanner) (match.MatchedJob, error) {
	var m match.MatchedJob
	var p job.Posting
	dest := append(matchDest(&m),
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
	if err := s.Scan(dest...); err != nil {
		return match.MatchedJob{}, err
	}
	m.Job = &p
	return m, nil
}

func (r *SQLMatchRepository) Get(ctx context.Context, claimantID, jobPostingID uuid.UUID) (match.MatchedJob, error) {
	m, err := scanMatch(r.db.QueryRow(ctx,
		`SELECT `+matchColumns+` FROM matched_jobs WHERE claimant_id = $1 AND job_posting_id = $2`,
		claimantID, jobPostingID,
	))
	if err != nil {
		if isNoRows(err) {
			return match.MatchedJob{}, match.ErrNotFound
		}
		return match.MatchedJob{}, err
	}
	return m, nil
}

func (r *SQLMatchRepository) Upsert(ctx context.Context, in match.Upsert) (match.MatchedJob, error) {
	if in.ClaimantID == uuid.Nil || in.JobPostingID == uuid.Nil {
		return match.MatchedJob{}, fmt.Errorf("claimant id and job posting id are required")
	}
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = match.StatusNew
	}

	m, err := scanMatch(r.db.QueryRow(ctx,
		`INSERT INTO matched_jobs (`+matchColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (claimant_id, job_posting_id) DO UPDATE SET
			match_score = EXCLUDED.match_score,
			status = EXCLUDED.status,
			notes = EXCLUDED.notes,
			matched_at = EXCLUDED.matched_at
		 RETURNING `+matchColumns,
		newID(),
		in.ClaimantID,
		in.JobPostingID,
		in.Score,
		status,
		nullableText(in.Notes),
		r.now(),
	))
	if err != nil {
		return match.MatchedJob{}, err
	}
	return m, nil
}

func (r *SQLMatchRepository) ListForClaimant(ctx context.Context, claimantID uuid.UUID, offset, limit int) ([]match.MatchedJob, error) {
	offset, limit = normalizePage(offset, limit)

	rows, err := r.db.Query(ctx,
		`SELECT m.id, m.claimant_id, m.job_posting_id, m.match_score, m.status, m.notes, m.matched_at,
			j.id, j.title, j.company_name, j.location, j.description, j.job_url, j.source_website,
			j.date_scraped, j.date_posted, j.is_active
		 FROM matched_jobs m
		 JOIN job_postings j ON j.id = m.job_posting_id
		 WHERE m.claimant_id = $1
		 ORDER BY m.id
		 LIMIT $2 OFFSET $3`,
		claimantID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return collectMatches(rows, scanMatchWithJob)
}

func (r *SQLMatchRepository) CountForClaimant(ctx context.Context, claimantID uuid.UUID) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM matched_jobs WHERE claimant_id = $1`, claimantID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *SQLMatchRepository) List(ctx context.Context, offset, limit int) ([]match.MatchedJob, error) {
	offset, limit = normalizePage(offset, limit)

	rows, err := r.db.Query(ctx,
		`SELECT `+matchColumns+` FROM matched_jobs ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return collectMatches(rows, scanMatch)
}

func collectMatches(rows database.Rows, scan func(scanner) (match.MatchedJob, error)) ([]match.MatchedJob, error) {
	defer rows.Close()

	out := make([]match.MatchedJob, 0)
	for rows.Next() {
		m, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
