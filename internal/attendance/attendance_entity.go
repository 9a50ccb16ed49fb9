package attendance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	statusPresent = "present"
	statusLate    = "late"
	statusLeave   = "leave"
	statusHalfDay = "half_day"

	MethodNFC         = "nfc"
	MethodManual      = "manual"
	MethodGeolocation = "geolocation"
)

// Attendance is the canonical record for one employee and one calendar
// day. A record is open while time_out is null; the unique index on
// (employee_id, attendance_date) makes the check-then-act of concurrent
// deliveries atomic at the store, and the unique idempotency key pins
// every record to exactly one logical tap.
type Attendance struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID      uuid.UUID      `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:uq_attendances_employee_date"`
	AttendanceDate  time.Time      `gorm:"column:attendance_date;type:date;not null;uniqueIndex:uq_attendances_employee_date"`
	TimeIn          time.Time      `gorm:"column:time_in;type:timestamptz;not null"`
	TimeOut         *time.Time     `gorm:"column:time_out;type:timestamptz"`
	DurationMinutes *int           `gorm:"column:duration_minutes"`
	Status          string         `gorm:"column:status;type:varchar(20);not null;default:present"`
	CheckInMethod   string         `gorm:"column:check_in_method;type:varchar(20);not null;default:nfc"`
	TagID           *string        `gorm:"column:tag_id;type:varchar(64);index"`
	ReaderID        *string        `gorm:"column:reader_id;type:varchar(64)"`
	Location        *string        `gorm:"column:location;type:varchar(150)"`
	IdempotencyKey  *string        `gorm:"column:idempotency_key;type:varchar(150);uniqueIndex:uq_attendances_idempotency_key"`
	CreatedAt       time.Time      `gorm:"column:created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Attendance) TableName() string {
	return "attendances"
}

// Open reports whether the record is still waiting for its check-out.
func (a *Attendance) Open() bool {
	return a.TimeOut == nil
}
