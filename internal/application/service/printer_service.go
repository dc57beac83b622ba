package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sangkips/salesbook-api/internal/domain/entity"
	"github.com/sangkips/salesbook-api/pkg/printer"
	"go.uber.org/zap"
)

// SaleGetter is the part of SaleService receipt printing needs
type SaleGetter interface {
	Get(ctx context.Context, id string) (*entity.Sale, error)
}

// PrinterService formats sale receipts and sends them to the thermal printer.
type PrinterService struct {
	printer     printer.Printer
	sales       SaleGetter
	printerType string
	storeName   string
	width       int
	logger      *zap.Logger
}

// PrinterServiceConfig describes the attached printer and the receipt layout
type PrinterServiceConfig struct {
	Type      string
	StoreName string
	Width     int
}

func NewPrinterService(p printer.Printer, sales SaleGetter, logger *zap.Logger, cfg PrinterServiceConfig) *PrinterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrinterService{
		printer:     p,
		sales:       sales,
		printerType: cfg.Type,
		storeName:   cfg.StoreName,
		width:       cfg.Width,
		logger:      logger,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != printer.TypeNone && s.printerType != "",
		Connected:  s.printer.Connected(ctx),
		Type:       s.printerType,
	}
}

// PrintSaleReceipt prints the receipt of a stored sale. When the sale exists
// but printing fails the receipt is returned together with the error, so
// callers can still show it.
func (s *PrinterService) PrintSaleReceipt(ctx context.Context, id string) (*entity.Receipt, error) {
	sale, err := s.sales.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	receipt := entity.NewReceipt(s.storeName, sale)
	if err := s.printer.Print(ctx, FormatReceipt(receipt, s.width)); err != nil {
		s.logger.Warn("receipt printing failed", zap.Int64("sale_id", sale.ID), zap.Error(err))
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}

	s.logger.Info("receipt printed", zap.Int64("sale_id", sale.ID))
	return receipt, nil
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatReceipt lays r out as ESC/POS bytes for a roll width characters wide.
func FormatReceipt(r *entity.Receipt, width int) []byte {
	doc := printer.NewDocument(width)

	doc.Align(printer.AlignCenter).
		Bold(true).
		Size(printer.FontDouble).
		Line(r.Header.StoreName).
		Size(printer.FontNormal).
		Bold(false).
		Line("INVOICE").
		Align(printer.AlignLeft).
		Rule('-')

	doc.Pair("Invoice:", r.InvoiceNumber).
		Pair("Date:", r.Date).
		Pair("Customer:", r.Customer)
	if r.CustomerPhone != "" {
		doc.Pair("Phone:", r.CustomerPhone)
	}
	if r.CustomerEmail != "" {
		doc.Pair("Email:", r.CustomerEmail)
	}
	doc.Rule('-')

	for _, item := range r.Items {
		qty := strconv.FormatFloat(item.Quantity, 'f', -1, 64)
		doc.Item(qty, item.Product, money(item.Amount))
		if item.Quantity != 1 {
			doc.Linef("  @ %s each", money(item.UnitPrice))
		}
	}
	doc.Rule('-')

	doc.Pair("Subtotal:", money(r.Subtotal)).
		Pair("Discount (10%):", "-"+money(r.DiscountAmount)).
		Pair("Tax (8%):", money(r.TaxAmount)).
		Bold(true).
		Pair("TOTAL:", money(r.Total)).
		Bold(false).
		Rule('-')

	if r.Notes != "" {
		doc.Line(r.Notes)
	}

	doc.Align(printer.AlignCenter).
		Feed(1).
		Line("Thank you for your business!").
		Align(printer.AlignLeft).
		Feed(3).
		Cut(true)

	return doc.Bytes()
}
