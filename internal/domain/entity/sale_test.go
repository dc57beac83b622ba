package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRefKeepsJSONKind(t *testing.T) {
	var items []LineItem
	require.NoError(t, json.Unmarshal([]byte(`[
		{"product": 42, "quantity": 2, "price": 10},
		{"product": "abc123", "quantity": 1, "price": 5}
	]`), &items))

	assert.Equal(t, "42", items[0].Product.String())
	assert.Equal(t, "abc123", items[1].Product.String())

	out, err := json.Marshal(items)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"product": 42, "quantity": 2, "price": 10},
		{"product": "abc123", "quantity": 1, "price": 5}
	]`, string(out))
}

func TestProductRefRejectsObjects(t *testing.T) {
	var ref ProductRef
	assert.Error(t, json.Unmarshal([]byte(`{"id": 1}`), &ref))

	require.NoError(t, json.Unmarshal([]byte(`null`), &ref))
	assert.True(t, ref.IsZero())
}

func TestNewProductRef(t *testing.T) {
	out, err := json.Marshal(NewProductRef("7"))
	require.NoError(t, err)
	assert.Equal(t, "7", string(out))

	out, err = json.Marshal(NewProductRef("sku-7"))
	require.NoError(t, err)
	assert.Equal(t, `"sku-7"`, string(out))
}

func TestDocumentRemoveKeepsOrder(t *testing.T) {
	doc := &SalesDocument{Sales: []Sale{{ID: 1}, {ID: 2}, {ID: 3}}}

	i := doc.IndexOf("2")
	require.Equal(t, 1, i)
	doc.Remove(i)

	assert.Equal(t, []Sale{{ID: 1}, {ID: 3}}, doc.Sales)
	assert.Equal(t, -1, doc.IndexOf("2"))
	assert.Equal(t, int64(3), doc.MaxID())
	assert.Equal(t, int64(0), NewSalesDocument().MaxID())
}

func TestExplicitProductRefKinds(t *testing.T) {
	out, err := json.Marshal([]ProductRef{StringProductRef("42"), NumberProductRef("42")})
	require.NoError(t, err)
	assert.JSONEq(t, `["42", 42]`, string(out))
}

func TestNewReceipt(t *testing.T) {
	sale := &Sale{
		ID:            5,
		CustomerName:  "Bob",
		InvoiceNumber: "INV-9",
		Date:          time.Date(2024, 3, 4, 9, 15, 0, 0, time.UTC),
		Products: []LineItem{
			{Product: NewProductRef("1"), Quantity: 2, Price: 10},
			{Product: NewProductRef("2"), Quantity: 1, Price: 5},
		},
		Subtotal:       25,
		DiscountAmount: 2.5,
		TaxAmount:      1.8,
		Total:          24.3,
	}

	r := NewReceipt("Corner Shop", sale)
	assert.Equal(t, "Corner Shop", r.Header.StoreName)
	assert.Equal(t, "2024-03-04 09:15", r.Date)
	assert.Equal(t, "Bob", r.Customer)
	require.Len(t, r.Items, 2)
	assert.Equal(t, ReceiptItem{Product: "1", Quantity: 2, UnitPrice: 10, Amount: 20}, r.Items[0])
	assert.Equal(t, 24.3, r.Total)
}
