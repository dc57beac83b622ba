package pagination

import (
	"math"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Pagination is the metadata returned alongside a page of records
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

// PaginationParams represents input parameters for pagination
type PaginationParams struct {
	Page     int `form:"pagination[page]" json:"page"`
	PageSize int `form:"pagination[pageSize]" json:"pageSize"`
}

// DefaultPagination returns default pagination values
func DefaultPagination() *PaginationParams {
	return &PaginationParams{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}
}

// Validate ensures pagination parameters are within valid ranges
func (p *PaginationParams) Validate() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Offset returns the index of the first record of the page. It saturates
// at math.MaxInt instead of overflowing.
func (p *PaginationParams) Offset() int {
	if p.Page <= 1 || p.PageSize <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}

// NewPagination creates a new Pagination response
func NewPagination(page, pageSize, total int) *Pagination {
	pageCount := int(math.Ceil(float64(total) / float64(pageSize)))

	return &Pagination{
		Page:      page,
		PageSize:  pageSize,
		PageCount: pageCount,
		Total:     total,
	}
}

// Paginate returns the requested page of items together with its metadata.
// Pages past the end yield an empty, non-nil slice.
func Paginate[T any](items []T, params *PaginationParams) ([]T, *Pagination) {
	if params == nil {
		params = DefaultPagination()
	}
	params.Validate()

	total := len(items)
	start := min(max(params.Offset(), 0), total)
	end := total
	if params.PageSize < total-start {
		end = start + params.PageSize
	}

	page := make([]T, end-start)
	copy(page, items[start:end])

	return page, NewPagination(params.Page, params.PageSize, total)
}
