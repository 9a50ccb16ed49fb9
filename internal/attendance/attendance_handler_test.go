package attendance_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/attendance"
	attendanceerrors "github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/attendance/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeService struct {
	processFn func(ctx context.Context, ev attendance.CanonicalEvent) (attendance.TapResponse, error)
	getAllFn  func(ctx context.Context, filter attendance.ListFilter) ([]attendance.AttendanceResponse, int64, error)
}

func (f *fakeService) Process(ctx context.Context, ev attendance.CanonicalEvent) (attendance.TapResponse, error) {
	return f.processFn(ctx, ev)
}

func (f *fakeService) GetAll(ctx context.Context, filter attendance.ListFilter) ([]attendance.AttendanceResponse, int64, error) {
	return f.getAllFn(ctx, filter)
}

func TestHandler_Tap(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		processFn: func(ctx context.Context, ev attendance.CanonicalEvent) (attendance.TapResponse, error) {
			assert.Equal(t, "TAG-1", ev.TagID)
			assert.Equal(t, attendance.KindOpen, ev.Kind)
			// Reader identity comes from device auth, never the body.
			assert.Equal(t, "gate-1", ev.ReaderID)
			assert.Equal(t, attendance.SourceReader, ev.Source)
			return attendance.TapResponse{
				Action: attendance.ActionCheckIn,
				Record: attendance.AttendanceResponse{ID: uuid.New().String()},
			}, nil
		},
	}
	n := attendance.NewNormalizer(attendance.DispatchExplicit, time.UTC)
	h := attendance.NewHandler(svc, n)

	body := `{"tag_id":"TAG-1","reader_id":"spoofed","occurred_at":"2025-03-10T08:02:00Z","action":"checkin"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("reader_id_validated", "gate-1")
	c.Set("reader_location", "HQ lobby")
	c.Request = httptest.NewRequest(http.MethodPost, "/attendances/tap", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Tap(c)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":true`)
}

func TestHandler_Tap_AlreadyProcessedIsOK(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		processFn: func(ctx context.Context, ev attendance.CanonicalEvent) (attendance.TapResponse, error) {
			return attendance.TapResponse{
				Action:           attendance.ActionCheckIn,
				AlreadyProcessed: true,
				Record:           attendance.AttendanceResponse{ID: uuid.New().String()},
			}, nil
		},
	}
	h := attendance.NewHandler(svc, attendance.NewNormalizer(attendance.DispatchExplicit, time.UTC))

	body := `{"tag_id":"TAG-1","occurred_at":"2025-03-10T08:02:00Z","action":"checkin"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/attendances/tap", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Tap(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"already_processed":true`)
}

func TestHandler_Tap_ServiceErrorMapped(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		processFn: func(ctx context.Context, ev attendance.CanonicalEvent) (attendance.TapResponse, error) {
			return attendance.TapResponse{}, attendanceerrors.ErrNoActiveCheckIn
		},
	}
	h := attendance.NewHandler(svc, attendance.NewNormalizer(attendance.DispatchExplicit, time.UTC))

	body := `{"tag_id":"TAG-1","occurred_at":"2025-03-10T17:00:00Z","action":"checkout"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/attendances/tap", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Tap(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_STATE")
}

func TestHandler_Tap_MissingAction(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		processFn: func(ctx context.Context, ev attendance.CanonicalEvent) (attendance.TapResponse, error) {
			t.Fatal("service must not be called")
			return attendance.TapResponse{}, nil
		},
	}
	h := attendance.NewHandler(svc, attendance.NewNormalizer(attendance.DispatchExplicit, time.UTC))

	body := `{"tag_id":"TAG-1","occurred_at":"2025-03-10T08:02:00Z"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/attendances/tap", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Tap(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Tap_UnknownMethodRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		processFn: func(ctx context.Context, ev attendance.CanonicalEvent) (attendance.TapResponse, error) {
			t.Fatal("service must not be called")
			return attendance.TapResponse{}, nil
		},
	}
	h := attendance.NewHandler(svc, attendance.NewNormalizer(attendance.DispatchExplicit, time.UTC))

	body := `{"tag_id":"TAG-1","occurred_at":"2025-03-10T08:02:00Z","action":"checkin","method":"telepathy"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/attendances/tap", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Tap(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Method")
}

func TestHandler_GetAll(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		getAllFn: func(ctx context.Context, filter attendance.ListFilter) ([]attendance.AttendanceResponse, int64, error) {
			assert.Equal(t, "emp-1", filter.EmployeeID)
			if assert.NotNil(t, filter.Date) {
				assert.Equal(t, "2025-03-10", filter.Date.Format("2006-01-02"))
			}
			return []attendance.AttendanceResponse{{ID: uuid.New().String()}}, 1, nil
		},
	}
	h := attendance.NewHandler(svc, attendance.NewNormalizer(attendance.DispatchExplicit, time.UTC))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/attendances?employee_id=emp-1&date=2025-03-10&page=1&page_size=10", nil)
	h.GetAll(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"meta"`)
}

func TestHandler_GetAll_BadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := attendance.NewHandler(&fakeService{}, attendance.NewNormalizer(attendance.DispatchExplicit, time.UTC))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/attendances?date=03/10/2025", nil)
	h.GetAll(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
