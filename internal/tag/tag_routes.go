package tag

import (
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	tags := r.Group("/tags")
	tags.Use(middleware.AuthMiddleware())
	{
		tags.GET("", h.GetAll)
		tags.POST("", h.Register)
		tags.PUT("/:tag_id/assign", h.Assign)
		tags.PATCH("/:tag_id/status", h.UpdateStatus)
	}
}
