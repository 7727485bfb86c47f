package handlers

import (
	"net/http"

	"go-erp-agent/internal/ledger"
	"go-erp-agent/internal/models"

	"github.com/gin-gonic/gin"
)

// --- GET: List all products ---
func (h *Handlers) GetProducts(c *gin.Context) {
	c.JSON(http.StatusOK, h.Mgr.Snapshot().Products)
}

// --- POST: Add a new product ---
func (h *Handlers) AddProduct(c *gin.Context) {
	var newProduct models.Product
	if err := c.ShouldBindJSON(&newProduct); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	next, err := h.Mgr.Dispatch(ledger.AddProductCmd{Product: newProduct})
	if err != nil {
		respondError(c, err)
		return
	}
	// The engine assigned the id; the new product is the last one.
	c.JSON(http.StatusCreated, next.Products[len(next.Products)-1])
}

// --- PUT: Update product details ---
// Stock is deliberately not updatable here; use the adjust-stock route so
// every quantity change lands in the stock history.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	var updated models.Product
	if err := c.ShouldBindJSON(&updated); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	updated.ID = c.Param("id")

	next, err := h.Mgr.Dispatch(ledger.UpdateProductCmd{Product: updated})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": next.FindProduct(updated.ID)})
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason"`
}

// --- POST: Manual stock adjustment ---
func (h *Handlers) AdjustStock(c *gin.Context) {
	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	id := c.Param("id")

	next, err := h.Mgr.Dispatch(ledger.AdjustStockCmd{ProductID: id, Delta: req.Delta, Reason: req.Reason})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, next.FindProduct(id))
}

// --- GET: Products at or below their reorder threshold ---
func (h *Handlers) GetLowStock(c *gin.Context) {
	alerts := ledger.LowStockAlerts(h.Mgr.Snapshot())
	if alerts == nil {
		alerts = []models.Product{}
	}
	c.JSON(http.StatusOK, alerts)
}
