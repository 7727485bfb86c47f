package handlers

import (
	"errors"
	"net/http"

	"go-erp-agent/internal/ai"
	"go-erp-agent/internal/ledger"
	"go-erp-agent/internal/state"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handlers carries the shared dependencies for every route: the single-writer
// state manager, the auth database, and the AI services.
type Handlers struct {
	Mgr      *state.Manager
	DB       *gorm.DB
	Insights *ai.Service
	Agent    *ai.Agent
}

func New(mgr *state.Manager, db *gorm.DB, insights *ai.Service, agent *ai.Agent) *Handlers {
	return &Handlers{Mgr: mgr, DB: db, Insights: insights, Agent: agent}
}

// respondError maps engine errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, state.ErrPersistence):
		// The mutation applied in memory; only the snapshot write failed.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "state saved in memory but could not be persisted"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
