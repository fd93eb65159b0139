package repository

import (
	"context"
	"errors"
	"time"

	"murmur/internal/models"

	"gorm.io/gorm"
)

// TagRepository defines persistence operations for hashtags.
type TagRepository interface {
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	ResolveNames(ctx context.Context, names []string) ([]models.Tag, error)
	List(ctx context.Context, limit int) ([]models.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository returns a new TagRepository implementation.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Tag", name)
		}
		return nil, models.NewInternalError(err)
	}
	return &tag, nil
}

// ResolveNames maps tag names to rows, creating rows that don't exist yet.
// Input order is preserved; duplicates must be removed by the caller.
// The insert tolerates a concurrent commit creating the same tag; both
// callers end up holding the same row.
func (r *tagRepository) ResolveNames(ctx context.Context, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	now := time.Now()
	for _, name := range names {
		if err := r.db.WithContext(ctx).Exec(
			"INSERT INTO tags (name, use_count, created_at, updated_at) VALUES (?, 0, ?, ?) ON CONFLICT DO NOTHING",
			name, now, now,
		).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		var tag models.Tag
		if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (r *tagRepository) List(ctx context.Context, limit int) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.WithContext(ctx).
		Order("use_count DESC").
		Limit(limit).
		Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}
