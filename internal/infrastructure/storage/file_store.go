package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sangkips/salesbook-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salesbook-api/internal/domain/repository"
	"github.com/sangkips/salesbook-api/pkg/apperror"
)

type fileStore struct {
	path string
}

// NewFileStore creates a sales store backed by a single JSON file
func NewFileStore(path string) domainRepo.SalesStore {
	return &fileStore{path: path}
}

func (s *fileStore) Load(ctx context.Context) (*entity.SalesDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entity.NewSalesDocument(), nil
	}
	if err != nil {
		return nil, apperror.NewStorageError("Failed to read sales store", err)
	}

	doc := entity.NewSalesDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, apperror.NewStorageError("Failed to decode sales store", fmt.Errorf("%s: %w", s.path, err))
	}
	if doc.Sales == nil {
		doc.Sales = []entity.Sale{}
	}
	return doc, nil
}

// Save writes the document to a temporary file in the same directory and
// renames it over the target, so readers see either the old or the new
// document.
func (s *fileStore) Save(ctx context.Context, doc *entity.SalesDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc.Sales == nil {
		doc = entity.NewSalesDocument()
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperror.NewStorageError("Failed to encode sales store", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperror.NewStorageError("Failed to write sales store", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return apperror.NewStorageError("Failed to write sales store", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperror.NewStorageError("Failed to write sales store", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return apperror.NewStorageError("Failed to write sales store", err)
	}
	if err := tmp.Close(); err != nil {
		return apperror.NewStorageError("Failed to write sales store", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return apperror.NewStorageError("Failed to write sales store", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return apperror.NewStorageError("Failed to write sales store", err)
	}
	return nil
}
