package attendance

import (
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, deviceAuth middleware.DeviceAuthFunc) {
	attendances := r.Group("/attendances")
	{
		// Reader firmware path: device credentials, throttled per IP and
		// per authenticated reader.
		attendances.POST("/tap",
			middleware.RateLimitByIP(rate.Limit(20), 40),
			middleware.DeviceAuth(deviceAuth),
			middleware.RateLimitByReader(rate.Limit(5), 10),
			h.Tap,
		)

		// Mobile and admin paths: bearer token.
		authed := attendances.Group("")
		authed.Use(middleware.AuthMiddleware())
		{
			authed.POST("/submit", h.Tap)
			authed.GET("", h.GetAll)
		}
	}
}
