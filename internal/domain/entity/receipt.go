package entity

// ReceiptHeader is the shop block printed at the top of a receipt
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
}

// ReceiptItem is one printed line of a receipt
type ReceiptItem struct {
	Product   string  `json:"product"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Amount    float64 `json:"amount"`
}

// Receipt is the printable view of a sale. It is built at print time and
// never stored.
type Receipt struct {
	Header         ReceiptHeader `json:"header"`
	SaleID         int64         `json:"sale_id"`
	InvoiceNumber  string        `json:"invoice_number"`
	Date           string        `json:"date"`
	Customer       string        `json:"customer"`
	CustomerEmail  string        `json:"customer_email,omitempty"`
	CustomerPhone  string        `json:"customer_phone,omitempty"`
	Items          []ReceiptItem `json:"items"`
	Subtotal       float64       `json:"subtotal"`
	DiscountAmount float64       `json:"discount_amount"`
	TaxAmount      float64       `json:"tax_amount"`
	Total          float64       `json:"total"`
	Notes          string        `json:"notes,omitempty"`
}

// NewReceipt lays a stored sale out as a receipt
func NewReceipt(storeName string, sale *Sale) *Receipt {
	r := &Receipt{
		Header:         ReceiptHeader{StoreName: storeName},
		SaleID:         sale.ID,
		InvoiceNumber:  sale.InvoiceNumber,
		Date:           sale.Date.Format("2006-01-02 15:04"),
		Customer:       sale.CustomerName,
		CustomerEmail:  sale.CustomerEmail,
		CustomerPhone:  sale.CustomerPhone,
		Items:          make([]ReceiptItem, 0, len(sale.Products)),
		Subtotal:       sale.Subtotal,
		DiscountAmount: sale.DiscountAmount,
		TaxAmount:      sale.TaxAmount,
		Total:          sale.Total,
		Notes:          sale.Notes,
	}
	for _, li := range sale.Products {
		r.Items = append(r.Items, ReceiptItem{
			Product:   li.Product.String(),
			Quantity:  li.Quantity,
			UnitPrice: li.Price,
			Amount:    li.Amount(),
		})
	}
	return r
}
