// Package invoice derives the monetary totals of a sale from its line items.
package invoice

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Rates applied to every invoice.
var (
	DiscountRate = decimal.RequireFromString("0.10")
	TaxRate      = decimal.RequireFromString("0.08")
)

// Line is one quantity/price pair of an invoice.
type Line struct {
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

// NewLine builds a Line from loosely typed values, treating anything
// non-numeric as zero.
func NewLine(quantity, price any) Line {
	return Line{Quantity: Coerce(quantity), Price: Coerce(price)}
}

// Totals holds the derived amounts of an invoice.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableAmount  decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// Calculate returns subtotal, discount, tax and total for lines.
//
//	subtotal = Σ quantity·price
//	discount = subtotal·DiscountRate
//	tax      = (subtotal − discount)·TaxRate
//	total    = subtotal − discount + tax
func Calculate(lines []Line) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Quantity.Mul(l.Price))
	}

	discount := subtotal.Mul(DiscountRate)
	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(TaxRate)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		TaxAmount:      tax,
		Total:          taxable.Add(tax),
	}
}

// Float returns the totals as float64 values in subtotal, discount, tax,
// total order.
func (t Totals) Float() (subtotal, discount, tax, total float64) {
	return t.Subtotal.InexactFloat64(),
		t.DiscountAmount.InexactFloat64(),
		t.TaxAmount.InexactFloat64(),
		t.Total.InexactFloat64()
}

// Coerce converts v to a decimal, returning zero when v is missing or not
// numeric.
func Coerce(v any) decimal.Decimal {
	d, ok := Parse(v)
	if !ok {
		return decimal.Zero
	}
	return d
}

// Parse converts v to a decimal and reports whether v was numeric.
// Strings are accepted when they hold a plain decimal number.
func Parse(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return n, true
	case float64:
		return fromFloat(n)
	case float32:
		return fromFloat(float64(n))
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

func fromFloat(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}
