// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"murmur/internal/cache"
	"murmur/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines persistence operations for users and their info rows.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByIDWithInfo(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	ListFeatured(ctx context.Context, limit int) ([]models.User, error)
	GetInfo(ctx context.Context, userID uint) (*models.UserInfo, error)
	SetFeatured(ctx context.Context, userID uint, featured bool) error
	AddFavorite(ctx context.Context, userID, noticeID uint) (bool, error)
	RemoveFavorite(ctx context.Context, userID, noticeID uint) (bool, error)
	ListFavorites(ctx context.Context, userID uint, limit, offset int) ([]models.Notice, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByIDWithInfo(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Preload("Info").
		Preload("Info.LastNotice").
		First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Preload("Info").
		Where("username = ?", username).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// Create inserts the user and its info row in one transaction. Every account
// gets exactly one info row at registration.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return err
		}
		info := &models.UserInfo{UserID: user.ID}
		if err := tx.Create(info).Error; err != nil {
			return err
		}
		user.Info = info
		return nil
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) ListFeatured(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	err := cache.Aside(ctx, cache.FeaturedUsersKey, &users, cache.FeaturedUsersTTL, func() error {
		if err := r.db.WithContext(ctx).
			Joins("JOIN user_infos ON user_infos.user_id = users.id").
			Where("user_infos.is_featured = ?", true).
			Limit(limit).
			Find(&users).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) GetInfo(ctx context.Context, userID uint) (*models.UserInfo, error) {
	var info models.UserInfo
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&info).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("UserInfo", userID)
		}
		return nil, models.NewInternalError(err)
	}
	return &info, nil
}

func (r *userRepository) SetFeatured(ctx context.Context, userID uint, featured bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.UserInfo{}).
		Where("user_id = ?", userID).
		Update("is_featured", featured)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("UserInfo", userID)
	}
	cache.Invalidate(ctx, cache.FeaturedUsersKey)
	return nil
}

// AddFavorite links the notice into user_favorites and bumps the notice's
// favorited_count atomically. Returns false when the pair already existed.
func (r *userRepository) AddFavorite(ctx context.Context, userID, noticeID uint) (bool, error) {
	added := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var info models.UserInfo
		if err := tx.Where("user_id = ?", userID).First(&info).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("UserInfo", userID)
			}
			return err
		}

		res := tx.Exec(
			"INSERT INTO user_favorites (user_info_id, notice_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
			info.ID, noticeID,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		added = true

		res = tx.Model(&models.Notice{}).
			Where("id = ?", noticeID).
			UpdateColumn("favorited_count", gorm.Expr("favorited_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		// A zero-row bump means the notice does not exist; roll the join
		// row back instead of leaving it dangling.
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Notice", noticeID)
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return false, err
		}
		return false, models.NewInternalError(err)
	}
	if added {
		cache.Invalidate(ctx, cache.NoticeKey(noticeID))
	}
	return added, nil
}

func (r *userRepository) RemoveFavorite(ctx context.Context, userID, noticeID uint) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var info models.UserInfo
		if err := tx.Where("user_id = ?", userID).First(&info).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("UserInfo", userID)
			}
			return err
		}

		res := tx.Exec(
			"DELETE FROM user_favorites WHERE user_info_id = ? AND notice_id = ?",
			info.ID, noticeID,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true

		return tx.Model(&models.Notice{}).
			Where("id = ? AND favorited_count > 0", noticeID).
			UpdateColumn("favorited_count", gorm.Expr("favorited_count - 1")).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return false, err
		}
		return false, models.NewInternalError(err)
	}
	if removed {
		cache.Invalidate(ctx, cache.NoticeKey(noticeID))
	}
	return removed, nil
}

func (r *userRepository) ListFavorites(ctx context.Context, userID uint, limit, offset int) ([]models.Notice, error) {
	var notices []models.Notice
	if err := r.db.WithContext(ctx).
		Joins("JOIN user_favorites ON user_favorites.notice_id = notices.id").
		Joins("JOIN user_infos ON user_infos.id = user_favorites.user_info_id").
		Where("user_infos.user_id = ?", userID).
		Order("notices.posted DESC").
		Limit(limit).Offset(offset).
		Preload("Author").
		Find(&notices).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return notices, nil
}
