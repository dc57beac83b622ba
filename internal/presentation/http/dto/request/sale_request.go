package request

import (
	"bytes"
	"encoding/json"
)

// CreateSaleRequest is the body of POST /sale-transactions. Fields sit
// under a "data" envelope.
type CreateSaleRequest struct {
	Data *SaleData `json:"data"`
}

// SaleData represents a sale transaction creation request
type SaleData struct {
	CustomerName   string          `json:"customer_name"`
	InvoiceNumber  string          `json:"invoice_number"`
	CustomerEmail  string          `json:"customer_email"`
	CustomerPhone  string          `json:"customer_phone"`
	Date           string          `json:"date"`
	Notes          string          `json:"notes"`
	Products       json.RawMessage `json:"products"`
	Subtotal       *float64        `json:"subtotal"`
	DiscountAmount *float64        `json:"discount_amount"`
	TaxAmount      *float64        `json:"tax_amount"`
	Total          *float64        `json:"total"`
}

// QuoteRequest is the body of POST /sale-transactions/quote
type QuoteRequest struct {
	Products json.RawMessage `json:"products"`
}

// LineItem is a loosely typed line item as sent by clients
type LineItem struct {
	Product  any `json:"product"`
	Quantity any `json:"quantity"`
	Price    any `json:"price"`
}

var falsy = [][]byte{[]byte("null"), []byte("false"), []byte("0"), []byte(`""`)}

// ParseProducts decodes a raw products field. A missing or falsy value
// gives nil, a value that is not a list gives an empty list, and list
// entries that are not objects become empty line items.
func ParseProducts(raw json.RawMessage) []LineItem {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	for _, f := range falsy {
		if bytes.Equal(raw, f) {
			return nil
		}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return []LineItem{}
	}

	items := make([]LineItem, len(entries))
	for i, entry := range entries {
		_ = json.Unmarshal(entry, &items[i])
	}
	return items
}
