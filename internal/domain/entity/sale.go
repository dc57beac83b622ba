package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Sale represents a completed sales transaction
type Sale struct {
	ID             int64      `json:"id"`
	CustomerName   string     `json:"customer_name"`
	InvoiceNumber  string     `json:"invoice_number"`
	CustomerEmail  string     `json:"customer_email"`
	CustomerPhone  string     `json:"customer_phone"`
	Date           time.Time  `json:"date"`
	Products       []LineItem `json:"products"`
	Subtotal       float64    `json:"subtotal"`
	DiscountAmount float64    `json:"discount_amount"`
	TaxAmount      float64    `json:"tax_amount"`
	Total          float64    `json:"total"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// IDString returns the id in the form used by lookups
func (s *Sale) IDString() string {
	return strconv.FormatInt(s.ID, 10)
}

// UnmarshalJSON reads a stored sale. Timestamps that are not RFC 3339 are
// parsed leniently; empty or unreadable ones become the zero time so one bad
// record cannot make the whole document unreadable.
func (s *Sale) UnmarshalJSON(data []byte) error {
	type plain Sale
	aux := struct {
		*plain
		Date      json.RawMessage `json:"date"`
		CreatedAt json.RawMessage `json:"createdAt"`
		UpdatedAt json.RawMessage `json:"updatedAt"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.Date = lenientTime(aux.Date)
	s.CreatedAt = lenientTime(aux.CreatedAt)
	s.UpdatedAt = lenientTime(aux.UpdatedAt)
	return nil
}

func lenientTime(raw json.RawMessage) time.Time {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}
	}
	if raw[0] != '"' {
		// epoch milliseconds, as Date.now() writes them
		ms, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return time.Time{}
		}
		return time.UnixMilli(ms).UTC()
	}

	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return time.Time{}
	}
	str = strings.TrimSpace(str)
	if str == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, str); err == nil {
		return t
	}
	t, err := dateparse.ParseIn(str, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// LineItem is one product entry of a sale. Price is the unit price at the
// time of sale.
type LineItem struct {
	Product  ProductRef `json:"product"`
	Quantity float64    `json:"quantity"`
	Price    float64    `json:"price"`
}

// Amount returns quantity times price
func (li LineItem) Amount() float64 {
	return li.Quantity * li.Price
}

// ProductRef identifies a catalog product. Catalog ids arrive either as JSON
// numbers or strings; the original kind is kept on output.
type ProductRef struct {
	value   string
	numeric bool
}

// NewProductRef builds a reference from its textual id
func NewProductRef(id string) ProductRef {
	_, err := strconv.ParseInt(id, 10, 64)
	return ProductRef{value: id, numeric: err == nil}
}

// NumberProductRef builds a reference that is written back as a JSON number.
// n must be a valid JSON number.
func NumberProductRef(n string) ProductRef {
	return ProductRef{value: n, numeric: true}
}

// StringProductRef builds a reference that is written back as a JSON string
func StringProductRef(s string) ProductRef {
	return ProductRef{value: s}
}

// String returns the id text
func (p ProductRef) String() string {
	return p.value
}

// IsZero reports whether the reference is empty
func (p ProductRef) IsZero() bool {
	return p.value == ""
}

// MarshalJSON writes numeric ids as numbers and everything else as strings
func (p ProductRef) MarshalJSON() ([]byte, error) {
	if p.numeric {
		return []byte(p.value), nil
	}
	return json.Marshal(p.value)
}

// UnmarshalJSON accepts a JSON number or string
func (p *ProductRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ProductRef{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = ProductRef{value: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("product reference must be a number or string")
	}
	*p = ProductRef{value: n.String(), numeric: true}
	return nil
}

// SalesDocument is the persisted unit holding the whole sales collection
type SalesDocument struct {
	Sales []Sale `json:"sales"`
}

// NewSalesDocument returns an empty document
func NewSalesDocument() *SalesDocument {
	return &SalesDocument{Sales: []Sale{}}
}

// IndexOf returns the position of the sale whose id string equals id, or -1
func (d *SalesDocument) IndexOf(id string) int {
	for i := range d.Sales {
		if d.Sales[i].IDString() == id {
			return i
		}
	}
	return -1
}

// Remove deletes the sale at index i keeping the order of the others
func (d *SalesDocument) Remove(i int) {
	d.Sales = append(d.Sales[:i], d.Sales[i+1:]...)
}

// MaxID returns the largest id in the document, or 0 when it is empty
func (d *SalesDocument) MaxID() int64 {
	var max int64
	for i := range d.Sales {
		if d.Sales[i].ID > max {
			max = d.Sales[i].ID
		}
	}
	return max
}
