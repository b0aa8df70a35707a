package history

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sign-scan/scanner-backend/internal/auth"
)

// Handler handles HTTP requests for a user's scan history
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers history routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	history := router.Group("/history")
	{
		history.GET("", h.listRecords)
		history.GET("/export", h.exportRecords)
		history.DELETE("/:id", h.deleteRecord)
		history.DELETE("", h.deleteAllRecords)
	}
}

// listRecords handles GET /api/v1/history
func (h *Handler) listRecords(c *gin.Context) {
	records, err := h.service.List(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
	})
}

// deleteRecord handles DELETE /api/v1/history/:id
func (h *Handler) deleteRecord(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record ID"})
		return
	}

	err = h.service.Delete(c.Request.Context(), auth.UserID(c), id)
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		h.logger.Error("Failed to delete scan record", zap.Error(err), zap.String("record_id", id.String()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete record."})
	default:
		c.Status(http.StatusNoContent)
	}
}

// deleteAllRecords handles DELETE /api/v1/history
func (h *Handler) deleteAllRecords(c *gin.Context) {
	deleted, err := h.service.DeleteAll(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.logger.Error("Failed to clear scan history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear history."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// exportRecords handles GET /api/v1/history/export?format=csv|xlsx
func (h *Handler) exportRecords(c *gin.Context) {
	format := ExportFormat(c.DefaultQuery("format", string(FormatCSV)))
	if !format.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
		return
	}

	var buf bytes.Buffer
	if err := h.service.Export(c.Request.Context(), auth.UserID(c), format, &buf); err != nil {
		h.logger.Error("Failed to export scan history", zap.Error(err), zap.String("format", string(format)))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export history."})
		return
	}

	filename := fmt.Sprintf("scan-history-%s.%s", time.Now().UTC().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
