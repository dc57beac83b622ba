package repository

import (
	"context"

	"github.com/sangkips/salesbook-api/internal/domain/entity"
)

// SalesStore loads and saves the whole sales document. Implementations
// replace the stored document in full on every Save.
type SalesStore interface {
	// Load returns the current document, or an empty one when nothing has
	// been stored yet
	Load(ctx context.Context) (*entity.SalesDocument, error)
	// Save overwrites the stored document with doc
	Save(ctx context.Context, doc *entity.SalesDocument) error
}
