package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sangkips/salesbook-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salesbook-api/internal/domain/repository"
	"github.com/sangkips/salesbook-api/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type documentRepository struct {
	db   *gorm.DB
	name string
}

// NewDocumentRepository creates a sales store that keeps the document as a
// single row of the sales_documents table
func NewDocumentRepository(db *gorm.DB, name string) domainRepo.SalesStore {
	return &documentRepository{db: db, name: name}
}

func (r *documentRepository) Load(ctx context.Context) (*entity.SalesDocument, error) {
	var row entity.StoredDocument
	err := r.find(r.db.WithContext(ctx), &row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.NewSalesDocument(), nil
	}
	if err != nil {
		return nil, apperror.NewStorageError("Failed to read sales store", err)
	}
	return decodeDocument(row.Content)
}

func (r *documentRepository) Save(ctx context.Context, doc *entity.SalesDocument) error {
	content, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	row := entity.StoredDocument{
		Name:      r.name,
		Content:   content,
		UpdatedAt: time.Now().UTC(),
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.upsert(tx, &row).Error
	})
	if err != nil {
		return apperror.NewStorageError("Failed to write sales store", err)
	}
	return nil
}

func (r *documentRepository) find(tx *gorm.DB, row *entity.StoredDocument) *gorm.DB {
	return tx.First(row, "name = ?", r.name)
}

func (r *documentRepository) upsert(tx *gorm.DB, row *entity.StoredDocument) *gorm.DB {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(row)
}

func encodeDocument(doc *entity.SalesDocument) ([]byte, error) {
	if doc == nil || doc.Sales == nil {
		doc = entity.NewSalesDocument()
	}
	content, err := json.Marshal(doc)
	if err != nil {
		return nil, apperror.NewStorageError("Failed to encode sales store", err)
	}
	return content, nil
}

func decodeDocument(content []byte) (*entity.SalesDocument, error) {
	doc := entity.NewSalesDocument()
	if len(content) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(content, doc); err != nil {
		return nil, apperror.NewStorageError("Failed to decode sales store", err)
	}
	if doc.Sales == nil {
		doc.Sales = []entity.Sale{}
	}
	return doc, nil
}
