package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobmatch/internal/config"
	"jobmatch/internal/database"
	"jobmatch/internal/domain/claimant"

	"github.com/google/uuid"
)

type ClaimantRepository interface {
	Create(ctx context.Context, in claimant.NewClaimant) (claimant.Claimant, error)
	GetByID(ctx context.Context, id uuid.UUID) (claimant.Claimant, error)
	// GetWithDocuments loads the claimant and its documents in upload order.
	GetWithDocuments(ctx context.Context, id uuid.UUID) (claimant.Claimant, error)
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, offset, limit int) ([]claimant.Claimant, error)
	Update(ctx context.Context, id uuid.UUID, patch claimant.Patch) (claimant.Claimant, error)
	AddDocument(ctx context.Context, in claimant.NewDocument) (claimant.Document, error)
	ListDocuments(ctx context.Context, claimantID uuid.UUID) ([]claimant.Document, error)
}

const (
	claimantColumns = `id, name, email, phone_number, notes, target_location, search_keywords, created_at, updated_at`
	documentColumns = `id, claimant_id, document_type, file_path, raw_text_content, parsed_entities, uploaded_at`
)

type SQLClaimantRepository struct {
	db  database.DB
	now func() time.Time
}

func NewSQLClaimantRepository(db database.DB) *SQLClaimantRepository {
	return &SQLClaimantRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func scanClaimant(s scanner) (claimant.Claimant, error) {
	var c claimant.Claimant
	err := s.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.PhoneNumber,
		&c.Notes,
		&c.TargetLocation,
		&c.SearchKeywords,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func scanDocument(s scanner) (claimant.Document, error) {
	var d claimant.Document
	var parsed *string
	err := s.Scan(
		&d.ID,
		&d.ClaimantID,
		&d.DocumentType,
		&d.FilePath,
		&d.RawText,
		&parsed,
		&d.UploadedAt,
	)
	if parsed != nil {
		d.ParsedEntities = []byte(*parsed)
	}
	return d, err
}

func (r *SQLClaimantRepository) Create(ctx context.Context, in claimant.NewClaimant) (claimant.Claimant, error) {
	now := r.now()
	c := claimant.Claimant{
		ID:             newID(),
		Name:           strings.TrimSpace(in.Name),
		Email:          claimant.NormalizeEmail(in.Email),
		PhoneNumber:    trimPtr(in.PhoneNumber),
		Notes:          trimPtr(in.Notes),
		TargetLocation: trimPtr(in.TargetLocation),
		SearchKeywords: trimPtr(in.SearchKeywords),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO claimants (`+claimantColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		c.ID,
		c.Name,
		c.Email,
		c.PhoneNumber,
		c.Notes,
		c.TargetLocation,
		c.SearchKeywords,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, database.ErrUniqueViolation) {
			return claimant.Claimant{}, claimant.ErrEmailTaken
		}
		return claimant.Claimant{}, err
	}
	return c, nil
}

func (r *SQLClaimantRepository) GetByID(ctx context.Context, id uuid.UUID) (claimant.Claimant, error) {
	return getClaimant(ctx, r.db, id, false)
}

func getClaimant(ctx context.Context, q database.Querier, id uuid.UUID, forUpdate bool) (claimant.Claimant, error) {
	query := `SELECT ` + claimantColumns + ` FROM claimants WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	c, err := scanClaimant(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return claimant.Claimant{}, claimant.ErrNotFound
		}
		return claimant.Claimant{}, err
	}
	return c, nil
}

func (r *SQLClaimantRepository) GetWithDocuments(ctx context.Context, id uuid.UUID) (claimant.Claimant, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return claimant.Claimant{}, err
	}
	docs, err := r.ListDocuments(ctx, id)
	if err != nil {
		return claimant.Claimant{}, err
	}
	c.Documents = docs
	return c, nil
}

func (r *SQLClaimantRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM claimants WHERE id = $1)`, id)
	if err := row.Scan(&exists); err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return exists, nil
}

func (r *SQLClaimantRepository) List(ctx context.Context, offset, limit int) ([]claimant.Claimant, error) {
	offset, limit = normalizePage(offset, limit)

	rows, err := r.db.Query(ctx,
		`SELECT `+claimantColumns+` FROM claimants ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]claimant.Claimant, 0)
	for rows.Next() {
		c, err := scanClaimant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies patch to the stored claimant inside one transaction. Fields
// absent from the patch keep their stored values.
func (r *SQLClaimantRepository) Update(ctx context.Context, id uuid.UUID, patch claimant.Patch) (claimant.Claimant, error) {
	if err := patch.Validate(); err != nil {
		return claimant.Claimant{}, err
	}

	var out claimant.Claimant
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		c, err := getClaimant(ctx, tx, id, r.db.Driver() == config.DriverPostgres)
		if err != nil {
			return err
		}

		if changed := patch.Apply(&c, r.now()); len(changed) > 0 {
			_, err = tx.Exec(ctx,
				`UPDATE claimants SET
					name = $1,
					email = $2,
					phone_number = $3,
					notes = $4,
					target_location = $5,
					search_keywords = $6,
					updated_at = $7
				 WHERE id = $8`,
				c.Name,
				c.Email,
				c.PhoneNumber,
				c.Notes,
				c.TargetLocation,
				c.SearchKeywords,
				c.UpdatedAt,
				c.ID,
			)
			if err != nil {
				if errors.Is(err, database.ErrUniqueViolation) {
					return claimant.ErrEmailTaken
				}
				return err
			}
		}

		out = c
		return nil
	})
	if err != nil {
		return claimant.Claimant{}, err
	}
	return out, nil
}

func (r *SQLClaimantRepository) AddDocument(ctx context.Context, in claimant.NewDocument) (claimant.Document, error) {
	d := claimant.Document{
		ID:           newID(),
		ClaimantID:   in.ClaimantID,
		DocumentType: strings.TrimSpace(in.DocumentType),
		FilePath:     strings.TrimSpace(in.FilePath),
		UploadedAt:   r.now(),
	}
	if in.RawText != "" {
		raw := in.RawText
		d.RawText = &raw
	}
	if d.DocumentType == "" || d.FilePath == "" {
		return claimant.Document{}, fmt.Errorf("document type and file path are required")
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO claimant_documents (id, claimant_id, document_type, file_path, raw_text_content, uploaded_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		d.ID,
		d.ClaimantID,
		d.DocumentType,
		d.FilePath,
		d.RawText,
		d.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, database.ErrForeignKeyViolation) {
			return claimant.Document{}, claimant.ErrNotFound
		}
		return claimant.Document{}, err
	}
	return d, nil
}

func (r *SQLClaimantRepository) ListDocuments(ctx context.Context, claimantID uuid.UUID) ([]claimant.Document, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+documentColumns+` FROM claimant_documents WHERE claimant_id = $1 ORDER BY id`,
		claimantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]claimant.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
