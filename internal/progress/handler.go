package progress

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sign-scan/scanner-backend/internal/auth"
)

type Handler struct {
	manager *Manager
	logger  *zap.Logger
}

func NewHandler(manager *Manager, logger *zap.Logger) *Handler {
	return &Handler{
		manager: manager,
		logger:  logger,
	}
}

// RegisterRoutes registers the progress feed
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/progress", h.connect)
}

// connect handles GET /api/v1/progress
func (h *Handler) connect(c *gin.Context) {
	if _, err := h.manager.HandleConnection(c.Writer, c.Request, auth.UserID(c)); err != nil {
		h.logger.Warn("Failed to open progress feed", zap.Error(err))
	}
}
