package offline

import (
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	offline := r.Group("/offline")
	offline.Use(middleware.AuthMiddleware())
	{
		offline.POST("/events", h.Upload)
	}
}
