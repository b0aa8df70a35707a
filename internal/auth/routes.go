package auth

import "github.com/gin-gonic/gin"

// RegisterRoutes registers identity routes on an authenticated group
func RegisterRoutes(rg *gin.RouterGroup, handler *Handler) {
	rg.GET("/me", handler.Me)
}
