package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

type AskRequest struct {
	Message string `json:"message" binding:"required"`
}

// --- POST: /api/ask ---
// Conversational agent over the live aggregate.
func (h *Handlers) AskAI(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}
	if os.Getenv("GEMINI_API_KEY") == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server missing Gemini API Key"})
		return
	}

	response, err := h.Agent.Ask(c.Request.Context(), req.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": response})
}

// --- GET: /api/insights ---
// Never fails: after exhausted retries the fallback (empty list) is served.
// The token lets the client discard a stale response that resolves after a
// newer request.
func (h *Handlers) GetInsights(c *gin.Context) {
	insights, token := h.Insights.GetInsights(c.Request.Context(), h.Mgr.Snapshot())
	c.JSON(http.StatusOK, gin.H{"insights": insights, "token": token})
}

// --- GET: /api/insights/forecast ---
func (h *Handlers) GetForecast(c *gin.Context) {
	text, token := h.Insights.PredictNextPeriod(c.Request.Context(), h.Mgr.Snapshot())
	c.JSON(http.StatusOK, gin.H{"forecast": text, "token": token})
}

// --- GET: /api/insights/customers ---
func (h *Handlers) GetCustomerIntelligence(c *gin.Context) {
	result, token := h.Insights.GetCustomerIntelligence(c.Request.Context(), h.Mgr.Snapshot())
	c.JSON(http.StatusOK, gin.H{"intelligence": result, "token": token})
}
