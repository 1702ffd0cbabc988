package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-pos-vault/internal/backup"
	"go-pos-vault/internal/middleware"
	"go-pos-vault/internal/models"
)

// maxBackupSize caps an uploaded backup file.
const maxBackupSize = 32 << 20

// GetSystemStatus identifies the terminal and reports storage health.
func (h *Handler) GetSystemStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"device_id":        h.app.Backup.Device(),
		"store_name":       h.app.Repo.Settings().StoreName,
		"backend":          h.app.Config.StoreBackend,
		"decrypt_failures": h.app.Store.DecryptFailures(),
	})
}

func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.Repo.Settings())
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var patch models.SettingsPatch
	if !bind(c, &patch) {
		return
	}
	res, err := h.app.Repo.UpdateSettings(patch, middleware.Actor(c))
	h.respond(c, res, err, http.StatusOK, nil)
}

func (h *Handler) GetAuditLogs(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.Repo.AuditLogs())
}

// ExportBackup downloads every collection as a plaintext JSON file.
func (h *Handler) ExportBackup(c *gin.Context) {
	doc := h.app.Backup.Export()
	filename := fmt.Sprintf("pos-backup-%s.json", doc.ExportedAt.Format(dateLayout))

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/json")
	c.Status(http.StatusOK)
	if err := backup.Encode(c.Writer, doc); err != nil {
		h.app.Logger.Error("backup export failed", "error", err)
	}
}

// ImportBackup replaces the shop's data with an uploaded backup. The body is the
// raw JSON document.
func (h *Handler) ImportBackup(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBackupSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read backup file"})
		return
	}
	res, err := h.app.Backup.Import(raw, middleware.Actor(c))
	h.respond(c, res, err, http.StatusOK, nil)
}

type ResetRequest struct {
	Confirm bool `json:"confirm"`
}

// ResetData wipes everything back to a fresh install. The caller must confirm.
func (h *Handler) ResetData(c *gin.Context) {
	var req ResetRequest
	if !bind(c, &req) {
		return
	}
	if !req.Confirm {
		c.JSON(http.StatusBadRequest, models.Fail("Reset must be confirmed"))
		return
	}

	start := time.Now()
	if err := h.app.Reset(middleware.Actor(c)); err != nil {
		h.respond(c, models.Result{}, err, 0, nil)
		return
	}
	h.app.Logger.Info("reset complete", "took", time.Since(start))
	c.JSON(http.StatusOK, models.OK())
}
