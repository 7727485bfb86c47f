package handlers

import (
	"net/http"

	"go-erp-agent/internal/ledger"
	"go-erp-agent/internal/models"

	"github.com/gin-gonic/gin"
)

// --- GET: Staff list ---
func (h *Handlers) GetStaff(c *gin.Context) {
	c.JSON(http.StatusOK, h.Mgr.Snapshot().Staff)
}

// --- POST: Add a staff member ---
func (h *Handlers) AddStaff(c *gin.Context) {
	var st models.Staff
	if err := c.ShouldBindJSON(&st); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	next, err := h.Mgr.Dispatch(ledger.AddStaffCmd{Staff: st})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, next.Staff[len(next.Staff)-1])
}

type StaffStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// --- PUT: Change a staff member's status ---
func (h *Handlers) UpdateStaffStatus(c *gin.Context) {
	var req StaffStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	id := c.Param("id")

	next, err := h.Mgr.Dispatch(ledger.UpdateStaffStatusCmd{StaffID: id, Status: req.Status})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, next.FindStaff(id))
}

// --- POST: Pay one monthly salary out of the cash balance ---
func (h *Handlers) ProcessSalary(c *gin.Context) {
	id := c.Param("id")

	next, err := h.Mgr.Dispatch(ledger.ProcessSalaryCmd{StaffID: id})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Salary successfully processed and recorded in ledger.",
		"cashBalance": next.CashBalance,
		"transaction": next.Transactions[len(next.Transactions)-1],
	})
}
