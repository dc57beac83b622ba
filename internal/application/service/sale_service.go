package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/araddon/dateparse"
	"github.com/sangkips/salesbook-api/internal/domain/entity"
	"github.com/sangkips/salesbook-api/internal/domain/repository"
	"github.com/sangkips/salesbook-api/pkg/apperror"
	"github.com/sangkips/salesbook-api/pkg/invoice"
	"github.com/sangkips/salesbook-api/pkg/metrics"
	"github.com/sangkips/salesbook-api/pkg/pagination"
	"github.com/sangkips/salesbook-api/pkg/query"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TotalsTolerance is the largest difference accepted between client supplied
// totals and the recomputed ones
const TotalsTolerance = 0.01

var requiredSaleFields = []string{"customer_name", "invoice_number", "customer_email", "customer_phone", "products"}

// ProductCatalog answers whether a product exists in the external catalogue
type ProductCatalog interface {
	ProductExists(ctx context.Context, id string) (bool, error)
}

// OperationObserver receives one call per finished sales operation
type OperationObserver interface {
	ObserveSaleOperation(op, result string)
}

// SaleServiceConfig carries the optional collaborators and switches of a
// SaleService
type SaleServiceConfig struct {
	Catalog               ProductCatalog
	Observer              OperationObserver
	VerifyTotals          bool
	StrictFilterOperators bool
	Clock                 func() time.Time
}

// SaleService handles sales transactions. Writes hold an exclusive lock
// around load, mutate and save of the sales document; reads share it.
type SaleService struct {
	mu              sync.RWMutex
	store           repository.SalesStore
	logger          *zap.Logger
	catalog         ProductCatalog
	observer        OperationObserver
	verifyTotals    bool
	strictOperators bool
	now             func() time.Time
	lastID          int64
}

// NewSaleService creates a new sale service
func NewSaleService(store repository.SalesStore, logger *zap.Logger, cfg SaleServiceConfig) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &SaleService{
		store:           store,
		logger:          logger,
		catalog:         cfg.Catalog,
		observer:        cfg.Observer,
		verifyTotals:    cfg.VerifyTotals,
		strictOperators: cfg.StrictFilterOperators,
		now:             clock,
	}
}

// LineItemInput is a line item as received from a client. Values are loosely
// typed: numbers, numeric strings and json.Number are accepted.
type LineItemInput struct {
	Product  any `json:"product"`
	Quantity any `json:"quantity"`
	Price    any `json:"price"`
}

// CreateSaleInput represents the create sale input. A nil Products slice
// means the field was not sent at all.
type CreateSaleInput struct {
	CustomerName   string
	InvoiceNumber  string
	CustomerEmail  string
	CustomerPhone  string
	Date           string
	Notes          string
	Products       []LineItemInput
	Subtotal       *float64
	DiscountAmount *float64
	TaxAmount      *float64
	Total          *float64
}

// Quote holds server computed totals for a set of line items
type Quote struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	TaxAmount      float64 `json:"tax_amount"`
	Total          float64 `json:"total"`
}

// Create validates input and appends a new sale to the store
func (s *SaleService) Create(ctx context.Context, input *CreateSaleInput) (sale *entity.Sale, err error) {
	defer func() { s.observe("create", err) }()

	if input == nil {
		return nil, apperror.NewValidationError("Request data is required")
	}
	if err := validateRequired(input); err != nil {
		return nil, err
	}

	items, lines, err := parseLineItems(input.Products)
	if err != nil {
		return nil, err
	}
	if err := s.checkCatalog(ctx, items); err != nil {
		return nil, err
	}

	var date time.Time
	if strings.TrimSpace(input.Date) != "" {
		date, err = dateparse.ParseIn(strings.TrimSpace(input.Date), time.UTC)
		if err != nil {
			return nil, apperror.NewFieldError("date", "date must be a valid date")
		}
	}

	sale = &entity.Sale{
		CustomerName:  input.CustomerName,
		InvoiceNumber: input.InvoiceNumber,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		Date:          date,
		Products:      items,
		Notes:         input.Notes,
	}
	if err := s.applyTotals(sale, invoice.Calculate(lines), input); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Error("failed to load sales store", zap.Error(err))
		return nil, err
	}

	now := s.now().UTC()
	sale.ID = s.nextID(doc, now)
	sale.CreatedAt = now
	sale.UpdatedAt = now
	if sale.Date.IsZero() {
		sale.Date = now
	}

	doc.Sales = append(doc.Sales, *sale)
	if err := s.store.Save(ctx, doc); err != nil {
		s.logger.Error("failed to save sale", zap.Int64("id", sale.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("sale created",
		zap.Int64("id", sale.ID),
		zap.String("invoice_number", sale.InvoiceNumber),
		zap.Float64("total", sale.Total),
	)
	return sale, nil
}

// List returns the page of sales matching filters
func (s *SaleService) List(ctx context.Context, filters query.Filters, params *pagination.PaginationParams) (sales []entity.Sale, meta *pagination.Pagination, err error) {
	defer func() { s.observe("list", err) }()

	if s.strictOperators {
		if unknown := filters.Unknown(); len(unknown) > 0 {
			fieldErrors := make([]apperror.FieldError, 0, len(unknown))
			for _, key := range unknown {
				fieldErrors = append(fieldErrors, apperror.FieldError{
					Field:   key,
					Message: "operator must be one of $eqi, $containsi, $gte, $lte",
				})
			}
			return nil, nil, apperror.NewValidationError("Unsupported filter operator", fieldErrors...)
		}
	}

	doc, err := s.load(ctx)
	if err != nil {
		return nil, nil, err
	}

	sales, meta, err = query.Apply(doc.Sales, filters, params)
	if err != nil {
		return nil, nil, fmt.Errorf("filter sales: %w", err)
	}
	return sales, meta, nil
}

// Get returns the sale whose id, compared as a string, equals id
func (s *SaleService) Get(ctx context.Context, id string) (sale *entity.Sale, err error) {
	defer func() { s.observe("get", err) }()

	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	i := doc.IndexOf(id)
	if i < 0 {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return &doc.Sales[i], nil
}

// Delete removes the sale with id. The store is left untouched when no sale
// matches.
func (s *SaleService) Delete(ctx context.Context, id string) (err error) {
	defer func() { s.observe("delete", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Error("failed to load sales store", zap.Error(err))
		return err
	}

	i := doc.IndexOf(id)
	if i < 0 {
		return apperror.NewNotFoundError("Sale")
	}
	doc.Remove(i)

	if err := s.store.Save(ctx, doc); err != nil {
		s.logger.Error("failed to save sales store after delete", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("sale deleted", zap.String("id", id))
	return nil
}

// Quote computes the totals the server would store for products
func (s *SaleService) Quote(products []LineItemInput) (quote *Quote, err error) {
	defer func() { s.observe("quote", err) }()

	if products == nil {
		products = []LineItemInput{}
	}
	_, lines, err := parseLineItems(products)
	if err != nil {
		return nil, err
	}

	subtotal, discount, tax, total := invoice.Calculate(lines).Float()
	return &Quote{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		Total:          total,
	}, nil
}

func (s *SaleService) load(ctx context.Context) (*entity.SalesDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Error("failed to load sales store", zap.Error(err))
		return nil, err
	}
	return doc, nil
}

// nextID returns a millisecond timestamp id that is strictly greater than
// every id handed out before. Callers hold the write lock.
func (s *SaleService) nextID(doc *entity.SalesDocument, now time.Time) int64 {
	id := now.UnixMilli()
	if last := doc.MaxID(); id <= last {
		id = last + 1
	}
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *SaleService) checkCatalog(ctx context.Context, items []entity.LineItem) error {
	if s.catalog == nil {
		return nil
	}

	checked := make(map[string]bool, len(items))
	for i, item := range items {
		id := item.Product.String()
		if exists, seen := checked[id]; seen {
			if !exists {
				return unknownProduct(i, id)
			}
			continue
		}

		exists, err := s.catalog.ProductExists(ctx, id)
		if err != nil {
			s.logger.Warn("product catalog lookup failed", zap.String("product", id), zap.Error(err))
			return &apperror.AppError{
				Code:    http.StatusBadGateway,
				Message: "Product catalog unavailable",
				Err:     err,
			}
		}
		checked[id] = exists
		if !exists {
			return unknownProduct(i, id)
		}
	}
	return nil
}

func unknownProduct(i int, id string) error {
	msg := fmt.Sprintf("Product %s does not exist", id)
	return apperror.NewValidationError(msg, apperror.FieldError{
		Field:   fmt.Sprintf("products[%d].product", i),
		Message: msg,
	})
}

// applyTotals stores the computed totals on sale. When verification is on,
// client supplied totals must agree with them; otherwise supplied values win.
func (s *SaleService) applyTotals(sale *entity.Sale, totals invoice.Totals, input *CreateSaleInput) error {
	subtotal, discount, tax, total := totals.Float()

	computed := []struct {
		field    string
		supplied *float64
		value    float64
		target   *float64
	}{
		{"subtotal", input.Subtotal, subtotal, &sale.Subtotal},
		{"discount_amount", input.DiscountAmount, discount, &sale.DiscountAmount},
		{"tax_amount", input.TaxAmount, tax, &sale.TaxAmount},
		{"total", input.Total, total, &sale.Total},
	}

	var mismatches []apperror.FieldError
	for _, c := range computed {
		*c.target = c.value
		if c.supplied == nil {
			continue
		}
		if !s.verifyTotals {
			*c.target = *c.supplied
			continue
		}
		if math.Abs(*c.supplied-c.value) > TotalsTolerance {
			mismatches = append(mismatches, apperror.FieldError{
				Field:   c.field,
				Message: fmt.Sprintf("%s does not match the computed value %s", c.field, decimal.NewFromFloat(c.value).StringFixed(2)),
			})
		}
	}

	if len(mismatches) > 0 {
		return apperror.NewValidationError(mismatches[0].Message, mismatches...)
	}
	return nil
}

func (s *SaleService) observe(op string, err error) {
	if s.observer == nil {
		return
	}
	result := metrics.ResultOK
	switch {
	case err == nil:
	case apperror.IsValidation(err):
		result = metrics.ResultInvalid
	case apperror.IsNotFound(err):
		result = metrics.ResultNotFound
	default:
		result = metrics.ResultError
	}
	s.observer.ObserveSaleOperation(op, result)
}

func validateRequired(input *CreateSaleInput) error {
	values := map[string]bool{
		"customer_name":  strings.TrimSpace(input.CustomerName) != "",
		"invoice_number": strings.TrimSpace(input.InvoiceNumber) != "",
		"customer_email": strings.TrimSpace(input.CustomerEmail) != "",
		"customer_phone": strings.TrimSpace(input.CustomerPhone) != "",
		"products":       input.Products != nil,
	}

	var missing []apperror.FieldError
	for _, field := range requiredSaleFields {
		if !values[field] {
			missing = append(missing, apperror.FieldError{Field: field, Message: field + " is required"})
		}
	}
	if len(missing) > 0 {
		return apperror.NewValidationError(missing[0].Message, missing...)
	}
	return nil
}

const msgIncompleteLineItem = "Each product must have product ID, quantity, and price"

// parseLineItems converts client line items into stored ones and calculator
// lines.
func parseLineItems(products []LineItemInput) ([]entity.LineItem, []invoice.Line, error) {
	if len(products) == 0 {
		return nil, nil, apperror.NewFieldError("products", "At least one product is required")
	}

	items := make([]entity.LineItem, 0, len(products))
	lines := make([]invoice.Line, 0, len(products))
	for i, p := range products {
		if p.Product == nil || p.Quantity == nil || p.Price == nil {
			return nil, nil, apperror.NewValidationError(msgIncompleteLineItem, apperror.FieldError{
				Field:   fmt.Sprintf("products[%d]", i),
				Message: msgIncompleteLineItem,
			})
		}

		ref, err := parseProductRef(p.Product)
		if err != nil {
			return nil, nil, apperror.NewValidationError(msgIncompleteLineItem, apperror.FieldError{
				Field:   fmt.Sprintf("products[%d].product", i),
				Message: err.Error(),
			})
		}

		qty, ok := invoice.Parse(p.Quantity)
		if !ok || !qty.IsPositive() {
			field := fmt.Sprintf("products[%d].quantity", i)
			return nil, nil, apperror.NewFieldError(field, field+" must be a positive number")
		}
		price, ok := invoice.Parse(p.Price)
		if !ok || price.IsNegative() {
			field := fmt.Sprintf("products[%d].price", i)
			return nil, nil, apperror.NewFieldError(field, field+" must be a non-negative number")
		}

		items = append(items, entity.LineItem{
			Product:  ref,
			Quantity: qty.InexactFloat64(),
			Price:    price.InexactFloat64(),
		})
		lines = append(lines, invoice.Line{Quantity: qty, Price: price})
	}
	return items, lines, nil
}

func parseProductRef(v any) (entity.ProductRef, error) {
	switch p := v.(type) {
	case string:
		if strings.TrimSpace(p) == "" {
			return entity.ProductRef{}, errors.New("product must not be empty")
		}
		return entity.StringProductRef(p), nil
	case float64:
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return entity.ProductRef{}, errors.New("product must be a valid id")
		}
		return entity.NumberProductRef(strconv.FormatFloat(p, 'f', -1, 64)), nil
	case int:
		return entity.NumberProductRef(strconv.Itoa(p)), nil
	case int64:
		return entity.NumberProductRef(strconv.FormatInt(p, 10)), nil
	case json.Number:
		if _, err := p.Float64(); err == nil {
			return entity.NumberProductRef(p.String()), nil
		}
	}
	return entity.ProductRef{}, errors.New("product must be a number or string")
}
