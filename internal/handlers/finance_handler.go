package handlers

import (
	"net/http"

	"go-erp-agent/internal/ledger"
	"go-erp-agent/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// --- GET: The full cash ledger ---
func (h *Handlers) GetTransactions(c *gin.Context) {
	c.JSON(http.StatusOK, h.Mgr.Snapshot().Transactions)
}

type TransactionRequest struct {
	Type          string          `json:"type" binding:"required"`
	Category      string          `json:"category" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	BankAccountID string          `json:"bankAccountId"`
}

// --- POST: Record a manual income/expense entry ---
func (h *Handlers) RecordTransaction(c *gin.Context) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	next, err := h.Mgr.Dispatch(ledger.RecordTransactionCmd{Tx: models.Transaction{
		Type:          req.Type,
		Category:      req.Category,
		Amount:        req.Amount,
		Description:   req.Description,
		BankAccountID: req.BankAccountID,
	}})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"transaction": next.Transactions[len(next.Transactions)-1],
		"cashBalance": next.CashBalance,
	})
}

// --- GET: Bank accounts ---
func (h *Handlers) GetBankAccounts(c *gin.Context) {
	snap := h.Mgr.Snapshot()
	bankTotal := decimal.Zero
	for _, acc := range snap.BankAccounts {
		bankTotal = bankTotal.Add(acc.Balance)
	}
	c.JSON(http.StatusOK, gin.H{
		"accounts":       snap.BankAccounts,
		"cashBalance":    snap.CashBalance,
		"totalLiquidity": snap.CashBalance.Add(bankTotal),
	})
}

// --- POST: Add a bank account ---
func (h *Handlers) AddBankAccount(c *gin.Context) {
	var acc models.BankAccount
	if err := c.ShouldBindJSON(&acc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	next, err := h.Mgr.Dispatch(ledger.AddBankAccountCmd{Account: acc})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, next.BankAccounts[len(next.BankAccounts)-1])
}
