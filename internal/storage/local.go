package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidFilename = errors.New("invalid filename")

// Local stores uploaded documents on disk under root, one directory per
// claimant: {root}/claimant_{id}/{filename}.
type Local struct {
	root string
}

func NewLocal(root string) *Local {
	root = strings.TrimSpace(root)
	if root == "" {
		root = "uploads"
	}
	return &Local{root: root}
}

func (l *Local) Root() string {
	return l.root
}

// Save writes data and returns the stored path. Only the base name of
// filename is kept; an existing file with the same name is replaced.
func (l *Local) Save(ctx context.Context, claimantID uuid.UUID, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := filepath.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if name == "" || name == "." || name == ".." || name == "/" {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}

	dir := filepath.Join(l.root, "claimant_"+claimantID.String())
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}

func (l *Local) Read(path string) ([]byte, error) {
	if err := l.checkInside(path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (l *Local) Remove(path string) error {
	if err := l.checkInside(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

func (l *Local) checkInside(path string) error {
	rel, err := filepath.Rel(l.root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %q is outside the upload root", ErrInvalidFilename, path)
	}
	return nil
}
