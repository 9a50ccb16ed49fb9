package offline_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/offline"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type captureQueue struct {
	events []offline.PendingEvent
}

func (q *captureQueue) Enqueue(ctx context.Context, ev offline.PendingEvent) error {
	q.events = append(q.events, ev)
	return nil
}

func (q *captureQueue) DrainAndReplay(ctx context.Context, submit offline.SubmitFunc) (int, error) {
	return 0, nil
}

func (q *captureQueue) Len(ctx context.Context) (int64, error) {
	return int64(len(q.events)), nil
}

func TestHandler_Upload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	q := &captureQueue{}
	h := offline.NewHandler(q)

	body := `{"events":[
		{"local_id":"local-1","type":"checkin","tag_id":"TAG-1","timestamp":"2025-03-10T08:02:00Z"},
		{"local_id":"local-2","type":"checkout","tag_id":"TAG-1","timestamp":"2025-03-10T17:31:45Z","location":"HQ lobby"}
	]}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/offline/events", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Upload(c)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"queued":2`)
	if assert.Len(t, q.events, 2) {
		assert.Equal(t, "checkin", q.events[0].Type)
		assert.Equal(t, "HQ lobby", q.events[1].Location)
	}
}

func TestHandler_Upload_RejectsBadType(t *testing.T) {
	gin.SetMode(gin.TestMode)

	q := &captureQueue{}
	h := offline.NewHandler(q)

	body := `{"events":[{"type":"clock-in","tag_id":"TAG-1","timestamp":"2025-03-10T08:02:00Z"}]}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/offline/events", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Upload(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, q.events)
}
