package invoice

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateWorkedExample(t *testing.T) {
	totals := Calculate([]Line{
		{Quantity: dec("2"), Price: dec("10.00")},
		{Quantity: dec("1"), Price: dec("5.00")},
	})

	assert.True(t, totals.Subtotal.Equal(dec("25.00")), "subtotal %s", totals.Subtotal)
	assert.True(t, totals.DiscountAmount.Equal(dec("2.50")), "discount %s", totals.DiscountAmount)
	assert.True(t, totals.TaxableAmount.Equal(dec("22.50")), "taxable %s", totals.TaxableAmount)
	assert.True(t, totals.TaxAmount.Equal(dec("1.80")), "tax %s", totals.TaxAmount)
	assert.True(t, totals.Total.Equal(dec("24.30")), "total %s", totals.Total)

	subtotal, discount, tax, total := totals.Float()
	assert.Equal(t, 25.0, subtotal)
	assert.Equal(t, 2.5, discount)
	assert.Equal(t, 1.8, tax)
	assert.Equal(t, 24.3, total)
}

func TestCalculateEmpty(t *testing.T) {
	totals := Calculate(nil)

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestCalculateTotalIdentity(t *testing.T) {
	lines := []Line{
		NewLine(3, 19.99),
		NewLine("7", "0.35"),
		NewLine(1.5, 120),
	}
	totals := Calculate(lines)

	want := totals.Subtotal.Sub(totals.DiscountAmount).Add(totals.TaxAmount)
	assert.True(t, totals.Total.Equal(want))
}

func TestNewLineFallsBackToZero(t *testing.T) {
	totals := Calculate([]Line{
		NewLine("abc", 10),
		NewLine(nil, 4),
		NewLine(2, true),
		NewLine(2, 3),
	})

	assert.True(t, totals.Subtotal.Equal(dec("6")), "subtotal %s", totals.Subtotal)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
		ok   bool
	}{
		{"float", 2.5, "2.5", true},
		{"int", 4, "4", true},
		{"int64", int64(9), "9", true},
		{"json number", json.Number("12.75"), "12.75", true},
		{"numeric string", " 3.10 ", "3.1", true},
		{"empty string", "", "0", false},
		{"garbage string", "12abc", "0", false},
		{"nil", nil, "0", false},
		{"bool", true, "0", false},
		{"nan", math.NaN(), "0", false},
		{"inf", math.Inf(1), "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}
