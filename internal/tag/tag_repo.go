package tag

import (
	"context"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=tag_repo.go -destination=mock/tag_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, b *TagBinding) error
	FindByTagID(ctx context.Context, tagID string) (*TagBinding, error)
	FindAll(ctx context.Context) ([]TagBinding, error)
	Update(ctx context.Context, b *TagBinding) error
	TouchLastUsed(ctx context.Context, tagID string, usedAt time.Time, readerID string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *TagBinding) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *repository) FindByTagID(ctx context.Context, tagID string) (*TagBinding, error) {
	var b TagBinding
	err := r.db.WithContext(ctx).
		Where("tag_id = ?", tagID).
		First(&b).Error
	return &b, err
}

func (r *repository) FindAll(ctx context.Context) ([]TagBinding, error) {
	var rows []TagBinding
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, b *TagBinding) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *repository) TouchLastUsed(ctx context.Context, tagID string, usedAt time.Time, readerID string) error {
	updates := map[string]any{"last_used_at": usedAt}
	if readerID != "" {
		updates["last_reader_id"] = readerID
	}
	return r.db.WithContext(ctx).
		Model(&TagBinding{}).
		Where("tag_id = ?", tagID).
		Updates(updates).Error
}
