package reader

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reader is a physical NFC reader allowed to submit taps. The API key is
// only ever stored hashed; the plaintext is shown once at registration.
type Reader struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	ReaderID   string         `gorm:"column:reader_id;type:varchar(64);not null;uniqueIndex:uq_readers_reader_id"`
	Name       string         `gorm:"column:name;type:varchar(120);not null"`
	Location   *string        `gorm:"column:location;type:varchar(150)"`
	APIKeyHash string         `gorm:"column:api_key_hash;type:varchar(100);not null"`
	LastSeenAt *time.Time     `gorm:"column:last_seen_at;type:timestamptz"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
	UpdatedAt  time.Time      `gorm:"column:updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Reader) TableName() string {
	return "readers"
}
