package repository

import (
	"context"
	"errors"
	"time"

	"murmur/internal/cache"
	"murmur/internal/models"
	"murmur/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NoticeRepository defines persistence operations for notices, including the
// transactional commit and the timeline visibility queries.
type NoticeRepository interface {
	Commit(ctx context.Context, notice *models.Notice, tags []models.Tag, groups []models.Group, replyTo []models.Notice) error
	GetByID(ctx context.Context, id uint) (*models.Notice, error)
	Delete(ctx context.Context, id uint) error
	ForAuthor(ctx context.Context, authorID uint, includeRestricted bool, limit, offset int) ([]models.Notice, error)
	Timeline(ctx context.Context, viewerID uint, limit, offset int) ([]models.Notice, error)
	Public(ctx context.Context, limit, offset int) ([]models.Notice, error)
	ForTag(ctx context.Context, tagID uint, limit, offset int) ([]models.Notice, error)
	ForGroup(ctx context.Context, groupID uint, limit, offset int) ([]models.Notice, error)
	Replies(ctx context.Context, noticeID, viewerID uint, limit, offset int) ([]models.Notice, error)
}

type noticeRepository struct {
	db *gorm.DB
}

// NewNoticeRepository returns a new NoticeRepository implementation.
func NewNoticeRepository(db *gorm.DB) NoticeRepository {
	return &noticeRepository{db: db}
}

// Commit persists a fully resolved notice in one transaction:
//
//  1. insert the notice row,
//  2. attach tag, group and reply join rows,
//  3. point the author's user_infos.last_notice_id at it,
//  4. bump tag use counts, once per distinct tag, in a single UPDATE,
//  5. bump the device's and each group's notices_count.
//
// Either all of it lands or none of it does. The counter updates are single
// SQL statements so concurrent commits never lose increments.
func (r *noticeRepository) Commit(ctx context.Context, notice *models.Notice, tags []models.Tag, groups []models.Group, replyTo []models.Notice) error {
	start := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(notice).Error; err != nil {
			return err
		}

		if len(tags) > 0 {
			if err := tx.Model(notice).Association("Tags").Append(tags); err != nil {
				return err
			}
		}
		if len(groups) > 0 {
			if err := tx.Model(notice).Association("Groups").Append(groups); err != nil {
				return err
			}
		}
		if len(replyTo) > 0 {
			if err := tx.Model(notice).Association("InReplyTo").Append(replyTo); err != nil {
				return err
			}
		}

		if err := tx.Model(&models.UserInfo{}).
			Where("user_id = ?", notice.AuthorID).
			Update("last_notice_id", notice.ID).Error; err != nil {
			return err
		}

		if len(tags) > 0 {
			tagIDs := make([]uint, len(tags))
			for i, t := range tags {
				tagIDs[i] = t.ID
			}
			if err := tx.Model(&models.Tag{}).
				Where("id IN ?", tagIDs).
				UpdateColumn("use_count", gorm.Expr("use_count + 1")).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Device{}).
			Where("id = ?", notice.ViaID).
			UpdateColumn("notices_count", gorm.Expr("notices_count + 1")).Error; err != nil {
			return err
		}

		if len(groups) > 0 {
			groupIDs := make([]uint, len(groups))
			for i, g := range groups {
				groupIDs[i] = g.ID
			}
			if err := tx.Model(&models.Group{}).
				Where("id IN ?", groupIDs).
				UpdateColumn("notices_count", gorm.Expr("notices_count + 1")).Error; err != nil {
				return err
			}
		}

		return nil
	})
	observability.DatabaseQueryLatency.WithLabelValues("commit", "notices").Observe(time.Since(start).Seconds())
	if err != nil {
		return models.NewInternalError(err)
	}

	cache.InvalidateUser(ctx, notice.AuthorID)
	cache.InvalidateTimelines(ctx, notice.AuthorID)
	for _, g := range groups {
		cache.InvalidateGroup(ctx, g.Name)
	}
	return nil
}

func (r *noticeRepository) GetByID(ctx context.Context, id uint) (*models.Notice, error) {
	var notice models.Notice
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Via").
		Preload("Tags").
		Preload("Groups").
		Preload("InReplyTo").
		Preload("InReplyTo.Author").
		First(&notice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Notice", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &notice, nil
}

func (r *noticeRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Notice{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Notice", id)
	}
	cache.Invalidate(ctx, cache.NoticeKey(id))
	return nil
}

// listQuery applies the shared preloads, ordering and pagination for the
// timeline-style listings.
func (r *noticeRepository) listQuery(ctx context.Context, limit, offset int) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Author").
		Preload("Via").
		Preload("Tags").
		Preload("Groups").
		Order("notices.posted DESC").
		Limit(limit).Offset(offset)
}

// ForAuthor lists the author's notices. Restricted ones are included only
// when the author views their own page.
func (r *noticeRepository) ForAuthor(ctx context.Context, authorID uint, includeRestricted bool, limit, offset int) ([]models.Notice, error) {
	q := r.listQuery(ctx, limit, offset).
		Where("notices.author_id = ?", authorID)
	if !includeRestricted {
		q = q.Where("notices.is_restricted = ?", false)
	}

	var notices []models.Notice
	if err := q.Find(&notices).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return notices, nil
}

// Timeline lists the notices the viewer may read, newest first:
//
//	((own OR by-followed OR reply-to-viewer) AND NOT restricted)
//	OR addressed to a group the viewer belongs to.
//
// Membership in one attached group is sufficient for a restricted notice.
func (r *noticeRepository) Timeline(ctx context.Context, viewerID uint, limit, offset int) ([]models.Notice, error) {
	followed := r.db.Model(&models.Follow{}).
		Select("followed_id").
		Where("follower_id = ?", viewerID)

	repliesToViewer := r.db.Table("notice_replies").
		Select("notice_replies.notice_id").
		Joins("JOIN notices AS targets ON targets.id = notice_replies.reply_to_id").
		Where("targets.author_id = ?", viewerID)

	memberGroupNotices := r.db.Table("notice_groups").
		Select("notice_groups.notice_id").
		Joins("JOIN group_members ON group_members.group_id = notice_groups.group_id").
		Where("group_members.user_id = ?", viewerID)

	var notices []models.Notice
	err := r.listQuery(ctx, limit, offset).
		Where(
			r.db.Where(
				r.db.Where("notices.author_id = ?", viewerID).
					Or("notices.author_id IN (?)", followed).
					Or("notices.id IN (?)", repliesToViewer),
			).Where("notices.is_restricted = ?", false),
		).
		Or("notices.id IN (?)", memberGroupNotices).
		Find(&notices).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return notices, nil
}

// Public lists the unrestricted firehose.
func (r *noticeRepository) Public(ctx context.Context, limit, offset int) ([]models.Notice, error) {
	var notices []models.Notice
	if err := r.listQuery(ctx, limit, offset).
		Where("notices.is_restricted = ?", false).
		Find(&notices).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return notices, nil
}

// ForTag lists unrestricted notices carrying the tag. Restricted notices stay
// off tag pages even for group members; the timeline is the place they show.
func (r *noticeRepository) ForTag(ctx context.Context, tagID uint, limit, offset int) ([]models.Notice, error) {
	var notices []models.Notice
	if err := r.listQuery(ctx, limit, offset).
		Joins("JOIN notice_tags ON notice_tags.notice_id = notices.id").
		Where("notice_tags.tag_id = ? AND notices.is_restricted = ?", tagID, false).
		Find(&notices).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return notices, nil
}

// ForGroup lists every notice addressed to the group. Access control for
// closed groups happens in the service layer.
func (r *noticeRepository) ForGroup(ctx context.Context, groupID uint, limit, offset int) ([]models.Notice, error) {
	var notices []models.Notice
	if err := r.listQuery(ctx, limit, offset).
		Joins("JOIN notice_groups ON notice_groups.notice_id = notices.id").
		Where("notice_groups.group_id = ?", groupID).
		Find(&notices).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return notices, nil
}

// Replies lists notices that answer the given notice. Restricted replies are
// held back unless the viewer wrote them or belongs to one of their groups.
func (r *noticeRepository) Replies(ctx context.Context, noticeID, viewerID uint, limit, offset int) ([]models.Notice, error) {
	q := r.listQuery(ctx, limit, offset).
		Joins("JOIN notice_replies ON notice_replies.notice_id = notices.id").
		Where("notice_replies.reply_to_id = ?", noticeID)

	if viewerID == 0 {
		q = q.Where("notices.is_restricted = ?", false)
	} else {
		memberGroupNotices := r.db.Table("notice_groups").
			Select("notice_groups.notice_id").
			Joins("JOIN group_members ON group_members.group_id = notice_groups.group_id").
			Where("group_members.user_id = ?", viewerID)
		q = q.Where(
			r.db.Where("notices.is_restricted = ?", false).
				Or("notices.author_id = ?", viewerID).
				Or("notices.id IN (?)", memberGroupNotices),
		)
	}

	var notices []models.Notice
	if err := q.Find(&notices).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return notices, nil
}
