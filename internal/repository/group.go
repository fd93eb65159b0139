package repository

import (
	"context"
	"errors"

	"murmur/internal/cache"
	"murmur/internal/models"

	"gorm.io/gorm"
)

// GroupRepository defines persistence operations for groups and membership.
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id uint) (*models.Group, error)
	GetByName(ctx context.Context, name string) (*models.Group, error)
	FindByNames(ctx context.Context, names []string) ([]models.Group, error)
	List(ctx context.Context, limit, offset int) ([]models.Group, error)
	ListForUser(ctx context.Context, userID uint) ([]models.Group, error)
	AddMember(ctx context.Context, groupID, userID uint) (bool, error)
	RemoveMember(ctx context.Context, groupID, userID uint) (bool, error)
	IsMember(ctx context.Context, groupID, userID uint) (bool, error)
	ListMembers(ctx context.Context, groupID uint, limit, offset int) ([]models.User, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository returns a new GroupRepository implementation.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Group name already taken")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Group", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &group, nil
}

// GetByName returns (nil, nil) when no group has that name.
func (r *groupRepository) GetByName(ctx context.Context, name string) (*models.Group, error) {
	var group models.Group
	key := cache.GroupKey(name)

	err := cache.Aside(ctx, key, &group, cache.GroupTTL, func() error {
		if err := r.db.WithContext(ctx).Where("name = ?", name).First(&group).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &group, nil
}

// FindByNames returns only the groups that exist. Names with no matching
// group are dropped silently; the caller never learns which ones.
func (r *groupRepository) FindByNames(ctx context.Context, names []string) ([]models.Group, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var groups []models.Group
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&groups).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return groups, nil
}

func (r *groupRepository) List(ctx context.Context, limit, offset int) ([]models.Group, error) {
	var groups []models.Group
	if err := r.db.WithContext(ctx).
		Order("users_count DESC").
		Limit(limit).Offset(offset).
		Find(&groups).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return groups, nil
}

func (r *groupRepository) ListForUser(ctx context.Context, userID uint) ([]models.Group, error) {
	var groups []models.Group
	if err := r.db.WithContext(ctx).
		Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ?", userID).
		Find(&groups).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return groups, nil
}

// AddMember inserts the membership row and recomputes users_count in one
// transaction. Returns false when the user was already a member.
func (r *groupRepository) AddMember(ctx context.Context, groupID, userID uint) (bool, error) {
	added := false
	var name string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			"INSERT INTO group_members (group_id, user_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP) ON CONFLICT DO NOTHING",
			groupID, userID,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		added = true
		if err := recountGroupUsers(tx, groupID); err != nil {
			return err
		}
		return tx.Model(&models.Group{}).Where("id = ?", groupID).Pluck("name", &name).Error
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	if added {
		cache.InvalidateGroup(ctx, name)
	}
	return added, nil
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID, userID uint) (bool, error) {
	removed := false
	var name string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			"DELETE FROM group_members WHERE group_id = ? AND user_id = ?",
			groupID, userID,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true
		if err := recountGroupUsers(tx, groupID); err != nil {
			return err
		}
		return tx.Model(&models.Group{}).Where("id = ?", groupID).Pluck("name", &name).Error
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	if removed {
		cache.InvalidateGroup(ctx, name)
	}
	return removed, nil
}

// recountGroupUsers refreshes the denormalized users_count from the
// membership table rather than trusting increments.
func recountGroupUsers(tx *gorm.DB, groupID uint) error {
	return tx.Model(&models.Group{}).
		Where("id = ?", groupID).
		UpdateColumn("users_count", gorm.Expr(
			"(SELECT COUNT(*) FROM group_members WHERE group_members.group_id = ?)", groupID,
		)).Error
}

func (r *groupRepository) IsMember(ctx context.Context, groupID, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *groupRepository) ListMembers(ctx context.Context, groupID uint, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN group_members ON group_members.user_id = users.id").
		Where("group_members.group_id = ?", groupID).
		Order("group_members.created_at ASC").
		Limit(limit).Offset(offset).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
