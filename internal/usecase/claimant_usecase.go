package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"jobmatch/internal/document"
	"jobmatch/internal/domain/claimant"
	"jobmatch/internal/logger"
	"jobmatch/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultDocumentType   = "CV"
	DefaultUploadMaxBytes = 10 << 20
)

type CreateClaimantInput struct {
	Name           string
	Email          string
	PhoneNumber    *string
	Notes          *string
	TargetLocation *string
	SearchKeywords *string
}

type UploadDocumentInput struct {
	ClaimantID   uuid.UUID
	DocumentType string
	Filename     string
	ContentType  string
	Data         []byte
}

type ClaimantUsecase interface {
	Create(ctx context.Context, in CreateClaimantInput) (claimant.Claimant, error)
	Get(ctx context.Context, id uuid.UUID) (claimant.Claimant, error)
	List(ctx context.Context, offset, limit int) ([]claimant.Claimant, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (claimant.Claimant, error)
	UploadDocument(ctx context.Context, in UploadDocumentInput) (claimant.Document, error)
}

type FileStore interface {
	Save(ctx context.Context, claimantID uuid.UUID, filename string, data []byte) (string, error)
	Remove(path string) error
}

type TextExtractor interface {
	ExtractText(data []byte, mimeType string) string
}

type Claimant struct {
	claimants repository.ClaimantRepository
	files     FileStore
	extractor TextExtractor
	maxBytes  int64
	logger    *zap.Logger
}

func NewClaimantUsecase(claimants repository.ClaimantRepository, files FileStore, extractor TextExtractor, maxBytes int64, log *zap.Logger) *Claimant {
	if maxBytes <= 0 {
		maxBytes = DefaultUploadMaxBytes
	}
	return &Claimant{
		claimants: claimants,
		files:     files,
		extractor: extractor,
		maxBytes:  maxBytes,
		logger:    logger.Named(log, "claimants"),
	}
}

func (u *Claimant) Create(ctx context.Context, in CreateClaimantInput) (claimant.Claimant, error) {
	name := strings.TrimSpace(in.Name)
	email := claimant.NormalizeEmail(in.Email)
	if name == "" || email == "" {
		return claimant.Claimant{}, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return claimant.Claimant{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}

	c, err := u.claimants.Create(ctx, claimant.NewClaimant{
		Name:           name,
		Email:          email,
		PhoneNumber:    in.PhoneNumber,
		Notes:          in.Notes,
		TargetLocation: in.TargetLocation,
		SearchKeywords: in.SearchKeywords,
	})
	if err != nil {
		if errors.Is(err, claimant.ErrEmailTaken) {
			return claimant.Claimant{}, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return claimant.Claimant{}, u.internal("create claimant", err)
	}
	return c, nil
}

func (u *Claimant) Get(ctx context.Context, id uuid.UUID) (claimant.Claimant, error) {
	c, err := u.claimants.GetWithDocuments(ctx, id)
	if err != nil {
		if errors.Is(err, claimant.ErrNotFound) {
			return claimant.Claimant{}, ErrNotFound
		}
		return claimant.Claimant{}, u.internal("get claimant", err)
	}
	return c, nil
}

func (u *Claimant) List(ctx context.Context, offset, limit int) ([]claimant.Claimant, error) {
	offset, limit, err := normalizePagination(offset, limit)
	if err != nil {
		return nil, err
	}
	out, err := u.claimants.List(ctx, offset, limit)
	if err != nil {
		return nil, u.internal("list claimants", err)
	}
	return out, nil
}

// Update applies a partial update decoded from a JSON object. Unknown fields
// and non-string values are rejected before the store is touched.
func (u *Claimant) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (claimant.Claimant, error) {
	patch, err := claimant.PatchFromMap(fields)
	if err != nil {
		return claimant.Claimant{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if patch.Email != nil {
		if _, err := mail.ParseAddress(strings.TrimSpace(*patch.Email)); err != nil {
			return claimant.Claimant{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
		}
	}

	c, err := u.claimants.Update(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, claimant.ErrInvalidPatch):
			return claimant.Claimant{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		case errors.Is(err, claimant.ErrNotFound):
			return claimant.Claimant{}, ErrNotFound
		case errors.Is(err, claimant.ErrEmailTaken):
			return claimant.Claimant{}, fmt.Errorf("%w: %v", ErrConflict, err)
		default:
			return claimant.Claimant{}, u.internal("update claimant", err)
		}
	}
	return c, nil
}

// UploadDocument stores the file, extracts its text and records the
// document. Extraction never fails the upload; unsupported files are stored
// with empty text.
func (u *Claimant) UploadDocument(ctx context.Context, in UploadDocumentInput) (claimant.Document, error) {
	if len(in.Data) == 0 {
		return claimant.Document{}, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}
	if int64(len(in.Data)) > u.maxBytes {
		return claimant.Document{}, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, u.maxBytes)
	}
	docType := strings.TrimSpace(in.DocumentType)
	if docType == "" {
		docType = DefaultDocumentType
	}

	ok, err := u.claimants.ExistsByID(ctx, in.ClaimantID)
	if err != nil {
		return claimant.Document{}, u.internal("check claimant", err)
	}
	if !ok {
		return claimant.Document{}, ErrNotFound
	}

	path, err := u.files.Save(ctx, in.ClaimantID, in.Filename, in.Data)
	if err != nil {
		return claimant.Document{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	mimeType := document.DetectMime(in.ContentType, in.Filename)
	text := u.extractor.ExtractText(in.Data, mimeType)

	doc, err := u.claimants.AddDocument(ctx, claimant.NewDocument{
		ClaimantID:   in.ClaimantID,
		DocumentType: docType,
		FilePath:     path,
		RawText:      text,
	})
	if err != nil {
		// no record points at the file
		if rmErr := u.files.Remove(path); rmErr != nil {
			u.logger.Warn("remove orphaned upload failed", zap.String("path", path), zap.Error(rmErr))
		}
		if errors.Is(err, claimant.ErrNotFound) {
			return claimant.Document{}, ErrNotFound
		}
		return claimant.Document{}, u.internal("add document", err)
	}

	u.logger.Info("document uploaded",
		zap.String("claimant_id", in.ClaimantID.String()),
		zap.String("document_type", docType),
		zap.String("mime", mimeType),
		zap.Int("bytes", len(in.Data)),
		zap.Int("text_len", len(text)),
	)
	return doc, nil
}

func (u *Claimant) internal(op string, err error) error {
	u.logger.Error(op+" failed", zap.Error(err))
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}
