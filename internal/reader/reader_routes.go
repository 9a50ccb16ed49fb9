package reader

import (
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	readers := r.Group("/readers")
	readers.Use(middleware.AuthMiddleware())
	{
		readers.GET("", h.GetAll)
		readers.POST("", h.Register)
	}
}
