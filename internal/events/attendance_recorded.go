package events

import "time"

const AttendanceRecordedTopic = "attendance.record.lifecycle.v1"

// AttendanceRecordedEvent is emitted once per real open/close transition.
// Idempotent replays (already-processed taps) never produce one.
type AttendanceRecordedEvent struct {
	EventType       string    `json:"event_type"` // attendance_checked_in | attendance_checked_out
	RequestID       string    `json:"request_id,omitempty"`
	AttendanceID    string    `json:"attendance_id"`
	EmployeeID      string    `json:"employee_id"`
	TagID           string    `json:"tag_id,omitempty"`
	AttendanceDate  string    `json:"attendance_date"`
	Action          string    `json:"action"` // checkin | checkout
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

const (
	EventTypeCheckedIn  = "attendance_checked_in"
	EventTypeCheckedOut = "attendance_checked_out"
)
