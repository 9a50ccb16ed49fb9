package reader

import (
	"context"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=reader_repo.go -destination=mock/reader_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, r *Reader) error
	FindByReaderID(ctx context.Context, readerID string) (*Reader, error)
	FindAll(ctx context.Context) ([]Reader, error)
	TouchLastSeen(ctx context.Context, readerID string, seenAt time.Time) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rd *Reader) error {
	return r.db.WithContext(ctx).Create(rd).Error
}

func (r *repository) FindByReaderID(ctx context.Context, readerID string) (*Reader, error) {
	var rd Reader
	err := r.db.WithContext(ctx).
		Where("reader_id = ?", readerID).
		First(&rd).Error
	return &rd, err
}

func (r *repository) FindAll(ctx context.Context) ([]Reader, error) {
	var rows []Reader
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) TouchLastSeen(ctx context.Context, readerID string, seenAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&Reader{}).
		Where("reader_id = ?", readerID).
		Update("last_seen_at", seenAt).Error
}
