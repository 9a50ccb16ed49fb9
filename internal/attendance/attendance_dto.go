package attendance

import "time"

const (
	ActionCheckIn  = "checkin"
	ActionCheckOut = "checkout"
)

type TapRequest struct {
	TagID          string    `json:"tag_id" binding:"required"`
	ReaderID       string    `json:"reader_id"`
	Location       string    `json:"location"`
	IdempotencyKey string    `json:"idempotency_key"`
	OccurredAt     time.Time `json:"occurred_at" binding:"required"`
	// Action is required in explicit dispatch mode and ignored in toggle
	// mode: checkin | checkout.
	Action string `json:"action"`
	Method string `json:"method" binding:"omitempty,oneof=nfc manual geolocation"`
}

type TapResponse struct {
	Action           string             `json:"action"`
	AlreadyProcessed bool               `json:"already_processed,omitempty"`
	Record           AttendanceResponse `json:"record"`
}

type AttendanceResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	AttendanceDate  string  `json:"attendance_date"`
	TimeIn          string  `json:"time_in"`
	TimeOut         *string `json:"time_out,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
	Status          string  `json:"status"`
	CheckInMethod   string  `json:"check_in_method"`
	TagID           *string `json:"tag_id,omitempty"`
	ReaderID        *string `json:"reader_id,omitempty"`
	Location        *string `json:"location,omitempty"`
}

type ListFilter struct {
	EmployeeID string
	Date       *time.Time
	Page       int
	PageSize   int
}

func mapToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:              a.ID.String(),
		EmployeeID:      a.EmployeeID.String(),
		AttendanceDate:  a.AttendanceDate.Format("2006-01-02"),
		TimeIn:          a.TimeIn.Format(time.RFC3339),
		DurationMinutes: a.DurationMinutes,
		Status:          a.Status,
		CheckInMethod:   a.CheckInMethod,
		TagID:           a.TagID,
		ReaderID:        a.ReaderID,
		Location:        a.Location,
	}
	if a.TimeOut != nil {
		v := a.TimeOut.Format(time.RFC3339)
		resp.TimeOut = &v
	}
	return resp
}
