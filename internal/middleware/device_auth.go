package middleware

import (
	"context"
	"net/http"

	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/shared/contextutil"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// DeviceAuthFunc verifies a reader's credentials and returns the reader's
// registered location (may be empty).
type DeviceAuthFunc func(ctx context.Context, readerID, apiKey string) (string, error)

// DeviceAuth authenticates NFC reader firmware. Readers present their id
// and API key as headers; the validated identity is what the tap handler
// trusts, never the request body.
func DeviceAuth(authenticate DeviceAuthFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		readerID := c.GetHeader("X-Reader-ID")
		apiKey := c.GetHeader("X-Api-Key")

		if readerID == "" || apiKey == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Reader credentials required", nil)
			c.Abort()
			return
		}

		location, err := authenticate(c.Request.Context(), readerID, apiKey)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid reader credentials", nil)
			c.Abort()
			return
		}

		c.Set("reader_id_validated", readerID)
		c.Set("reader_location", location)

		ctx := contextutil.WithReaderID(c.Request.Context(), readerID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
