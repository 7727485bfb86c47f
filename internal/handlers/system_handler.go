package handlers

import (
	"net/http"
	"time"

	"go-erp-agent/internal/ledger"
	"go-erp-agent/internal/utils"

	"github.com/gin-gonic/gin"
)

// --- GET: /api/system/status ---
// Reports the hardware-derived instance id and a quick health summary.
func (h *Handlers) GetSystemStatus(c *gin.Context) {
	snap := h.Mgr.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"device_id":   utils.GetDeviceID(),
		"products":    len(snap.Products),
		"sales":       len(snap.Sales),
		"last_backup": snap.Settings.LastBackup,
	})
}

// --- GET: /api/settings ---
func (h *Handlers) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.Mgr.Snapshot().Settings)
}

// --- PUT: /api/settings ---
func (h *Handlers) UpdateSettings(c *gin.Context) {
	snap := h.Mgr.Snapshot()
	settings := snap.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	// LastBackup is system-managed, not client-settable.
	settings.LastBackup = snap.Settings.LastBackup

	next, err := h.Mgr.Dispatch(ledger.UpdateSettingsCmd{Settings: settings})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, next.Settings)
}

// --- GET: /api/backup ---
// Exports the full aggregate as a JSON download and stamps lastBackup.
func (h *Handlers) ExportBackup(c *gin.Context) {
	snap := h.Mgr.Snapshot()

	settings := snap.Settings
	settings.LastBackup = time.Now()
	if _, err := h.Mgr.Dispatch(ledger.UpdateSettingsCmd{Settings: settings}); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="erp-backup.json"`)
	c.JSON(http.StatusOK, snap)
}
