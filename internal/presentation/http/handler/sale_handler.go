package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salesbook-api/internal/application/service"
	"github.com/sangkips/salesbook-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salesbook-api/internal/presentation/http/dto/response"
	"github.com/sangkips/salesbook-api/pkg/pagination"
	"github.com/sangkips/salesbook-api/pkg/query"
)

// SaleHandler handles sale transaction HTTP requests
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Create handles POST /sale-transactions
func (h *SaleHandler) Create(c *gin.Context) {
	var req request.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if req.Data == nil {
		response.BadRequest(c, "Request data is required")
		return
	}

	d := req.Data
	sale, err := h.saleService.Create(c.Request.Context(), &service.CreateSaleInput{
		CustomerName:   d.CustomerName,
		InvoiceNumber:  d.InvoiceNumber,
		CustomerEmail:  d.CustomerEmail,
		CustomerPhone:  d.CustomerPhone,
		Date:           d.Date,
		Notes:          d.Notes,
		Products:       toLineItemInputs(request.ParseProducts(d.Products)),
		Subtotal:       d.Subtotal,
		DiscountAmount: d.DiscountAmount,
		TaxAmount:      d.TaxAmount,
		Total:          d.Total,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Sale transaction created successfully", sale)
}

// List handles GET /sale-transactions with filters[field][$op] and
// pagination[page|pageSize] query parameters
func (h *SaleHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("pagination[page]", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pagination[pageSize]", "10"))

	params := &pagination.PaginationParams{Page: page, PageSize: pageSize}
	filters := query.ParseValues(c.Request.URL.Query())

	sales, meta, err := h.saleService.List(c.Request.Context(), filters, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Sale transactions retrieved successfully", sales, meta)
}

// Quote handles POST /sale-transactions/quote
func (h *SaleHandler) Quote(c *gin.Context) {
	var req request.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	quote, err := h.saleService.Quote(toLineItemInputs(request.ParseProducts(req.Products)))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quote calculated successfully", quote)
}

// Get handles GET /sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	sale, err := h.saleService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale retrieved successfully", sale)
}

// Delete handles DELETE /sales/:id
func (h *SaleHandler) Delete(c *gin.Context) {
	if err := h.saleService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale deleted successfully", nil)
}

func toLineItemInputs(items []request.LineItem) []service.LineItemInput {
	if items == nil {
		return nil
	}
	out := make([]service.LineItemInput, len(items))
	for i, item := range items {
		out[i] = service.LineItemInput{
			Product:  item.Product,
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}
	return out
}
