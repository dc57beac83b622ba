package pagination

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginateTwentyFiveRecords(t *testing.T) {
	items := seq(25)

	tests := []struct {
		page      int
		wantLen   int
		wantFirst int
	}{
		{page: 1, wantLen: 10, wantFirst: 1},
		{page: 2, wantLen: 10, wantFirst: 11},
		{page: 3, wantLen: 5, wantFirst: 21},
		{page: 4, wantLen: 0},
	}

	for _, tt := range tests {
		got, meta := Paginate(items, &PaginationParams{Page: tt.page, PageSize: 10})

		require.NotNil(t, got)
		assert.Len(t, got, tt.wantLen, "page %d", tt.page)
		if tt.wantLen > 0 {
			assert.Equal(t, tt.wantFirst, got[0], "page %d", tt.page)
		}
		assert.Equal(t, 3, meta.PageCount)
		assert.Equal(t, 25, meta.Total)
		assert.Equal(t, tt.page, meta.Page)
		assert.Equal(t, 10, meta.PageSize)
	}
}

func TestPaginateDefaults(t *testing.T) {
	got, meta := Paginate(seq(12), nil)

	assert.Len(t, got, 10)
	assert.Equal(t, &Pagination{Page: 1, PageSize: 10, PageCount: 2, Total: 12}, meta)
}

func TestPaginateEmpty(t *testing.T) {
	got, meta := Paginate([]string{}, &PaginationParams{Page: 1, PageSize: 10})

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 0, meta.PageCount)
	assert.Equal(t, 0, meta.Total)
}

func TestValidate(t *testing.T) {
	p := &PaginationParams{Page: -3, PageSize: 1000}
	p.Validate()

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPageSize, p.PageSize)

	p = &PaginationParams{}
	p.Validate()
	assert.Equal(t, DefaultPagination(), p)
}

func TestPaginateDoesNotAliasInput(t *testing.T) {
	items := seq(3)
	got, _ := Paginate(items, &PaginationParams{Page: 1, PageSize: 2})
	got[0] = 99

	assert.Equal(t, 1, items[0])
}

func TestPaginateHugePage(t *testing.T) {
	items := seq(25)

	for _, page := range []int{math.MaxInt, math.MaxInt/10 + 2, math.MaxInt / 10} {
		got, meta := Paginate(items, &PaginationParams{Page: page, PageSize: 10})

		require.NotNil(t, got, "page %d", page)
		assert.Empty(t, got, "page %d", page)
		assert.Equal(t, &Pagination{Page: page, PageSize: 10, PageCount: 3, Total: 25}, meta)
	}
}

func TestOffsetSaturates(t *testing.T) {
	assert.Equal(t, 20, (&PaginationParams{Page: 3, PageSize: 10}).Offset())
	assert.Equal(t, math.MaxInt, (&PaginationParams{Page: math.MaxInt, PageSize: 10}).Offset())
	assert.Equal(t, 0, (&PaginationParams{Page: 0, PageSize: 10}).Offset())
	assert.Equal(t, 0, (&PaginationParams{Page: 4}).Offset())
}
