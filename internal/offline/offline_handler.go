package offline

import (
	"net/http"
	"time"

	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/shared/apperror"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type UploadEventRequest struct {
	LocalID   string    `json:"local_id"`
	Type      string    `json:"type" binding:"required,oneof=checkin checkout"`
	TagID     string    `json:"tag_id" binding:"required"`
	Timestamp time.Time `json:"timestamp" binding:"required"`
	ReaderID  string    `json:"reader_id"`
	Location  string    `json:"location"`
}

type UploadRequest struct {
	Events []UploadEventRequest `json:"events" binding:"required,min=1,dive"`
}

type UploadResponse struct {
	Queued int `json:"queued"`
}

type Handler struct {
	queue Queue
}

func NewHandler(queue Queue) *Handler {
	return &Handler{queue: queue}
}

// Upload accepts the batch a mobile client buffered while offline. The
// events are queued and replayed asynchronously through the live tap
// path; each keeps its original timestamp so late replay reconciles to
// the same record a live submission would have produced.
func (h *Handler) Upload(c *gin.Context) {
	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	queued := 0
	for _, e := range req.Events {
		ev := PendingEvent{
			LocalID:   e.LocalID,
			Type:      e.Type,
			TagID:     e.TagID,
			Timestamp: e.Timestamp,
			ReaderID:  e.ReaderID,
			Location:  e.Location,
		}
		if err := h.queue.Enqueue(c.Request.Context(), ev); err != nil {
			httpErr := apperror.ToHTTP(err)
			response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
			return
		}
		queued++
	}

	response.Success(c, http.StatusAccepted, UploadResponse{Queued: queued}, nil)
}
