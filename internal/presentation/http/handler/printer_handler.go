package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/salesbook-api/internal/application/service"
	"github.com/sangkips/salesbook-api/internal/presentation/http/dto/response"
)

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// GetStatus returns the current printer connection status.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	response.OK(c, "Printer status retrieved", h.printerService.GetStatus(c.Request.Context()))
}

// PrintSale prints the invoice receipt of a stored sale. A printer failure
// still returns the receipt, with a warning.
func (h *PrinterHandler) PrintSale(c *gin.Context) {
	receipt, err := h.printerService.PrintSaleReceipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		if receipt != nil {
			response.OK(c, "Receipt generated but printing failed", gin.H{
				"receipt": receipt,
				"warning": err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt printed successfully", gin.H{"receipt": receipt})
}
