package attendance

import (
	"net/http"
	"strconv"
	"time"

	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/shared/apperror"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service    Service
	normalizer *Normalizer
}

func NewHandler(service Service, normalizer *Normalizer) *Handler {
	return &Handler{service: service, normalizer: normalizer}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// Tap ingests one tap event from a reader or mobile client. The reader
// identity comes from device auth, not the body, so a reader cannot
// impersonate another.
func (h *Handler) Tap(c *gin.Context) {
	var req TapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	source := SourceMobile
	if readerID := c.GetString("reader_id_validated"); readerID != "" {
		req.ReaderID = readerID
		source = SourceReader
		if req.Location == "" {
			req.Location = c.GetString("reader_location")
		}
	}

	ev, err := h.normalizer.NormalizeTap(req, source)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp, err := h.service.Process(c.Request.Context(), ev)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if resp.AlreadyProcessed || resp.Action == ActionCheckOut {
		status = http.StatusOK
	}
	response.Success(c, status, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	filter := ListFilter{
		EmployeeID: c.Query("employee_id"),
	}
	if d := c.Query("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid date format, expected YYYY-MM-DD", nil)
			return
		}
		filter.Date = &parsed
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if pageSize < 1 {
		pageSize = 10
	}
	filter.Page = page
	filter.PageSize = pageSize

	resp, total, err := h.service.GetAll(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, resp, &meta)
}
