package handlers

import (
	"net/http"

	"go-erp-agent/internal/ledger"
	"go-erp-agent/internal/models"

	"github.com/gin-gonic/gin"
)

// SaleRequest is what the POS screen sends at checkout.
type SaleRequest struct {
	Items []struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required"`
	} `json:"items" binding:"required"`
	PaymentMethod string `json:"paymentMethod" binding:"required"`
	CustomerName  string `json:"customerName"`
}

// --- POST: Checkout ---
// Prices the cart against current product records, then commits the sale as
// one atomic transition: stock down, sale appended, cash up, income recorded.
func (h *Handlers) ProcessSale(c *gin.Context) {
	var req SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	cart := make([]models.SaleItem, len(req.Items))
	for i, item := range req.Items {
		cart[i] = models.SaleItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	sale, err := ledger.NewSale(h.Mgr.Snapshot(), cart, req.PaymentMethod, req.CustomerName)
	if err != nil {
		respondError(c, err)
		return
	}

	if _, err := h.Mgr.Dispatch(ledger.CommitSaleCmd{Sale: sale}); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Sale successful!",
		"sale_id":  sale.ID,
		"subtotal": sale.Subtotal,
		"tax":      sale.TaxAmount,
		"total":    sale.TotalAmount,
	})
}

// --- GET: Sales log ---
func (h *Handlers) GetSales(c *gin.Context) {
	c.JSON(http.StatusOK, h.Mgr.Snapshot().Sales)
}
