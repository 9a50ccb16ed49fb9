package tag

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusLost     = "lost"
	StatusDamaged  = "damaged"
)

// TagBinding maps a physical NFC tag identifier to an employee. A binding
// may exist before it is assigned; only an active, assigned binding can
// produce attendance records.
type TagBinding struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	TagID        string         `gorm:"column:tag_id;type:varchar(64);not null;uniqueIndex:uq_tag_bindings_tag_id"`
	EmployeeID   *uuid.UUID     `gorm:"column:employee_id;type:uuid;index"`
	Status       string         `gorm:"column:status;type:varchar(20);not null;default:inactive"`
	LastUsedAt   *time.Time     `gorm:"column:last_used_at;type:timestamptz"`
	LastReaderID *string        `gorm:"column:last_reader_id;type:varchar(64)"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (TagBinding) TableName() string {
	return "tag_bindings"
}

func validStatus(s string) bool {
	switch s {
	case StatusActive, StatusInactive, StatusLost, StatusDamaged:
		return true
	default:
		return false
	}
}
