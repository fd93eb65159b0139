package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix         = "user:%d"
	NoticeKeyPrefix       = "notice:%d"
	TagKeyPrefix          = "tag:%s"
	GroupKeyPrefix        = "group:%s"
	PublicTimelineKey     = "timeline:public"
	UserTimelineKeyPrefix = "timeline:user:%d"
	FeaturedUsersKey      = "users:featured"
)

const (
	UserTTL           = 5 * time.Minute
	NoticeTTL         = 30 * time.Minute
	GroupTTL          = 10 * time.Minute
	PublicTimelineTTL = 30 * time.Second
	UserTimelineTTL   = 1 * time.Minute
	FeaturedUsersTTL  = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func NoticeKey(noticeID uint) string {
	return fmt.Sprintf(NoticeKeyPrefix, noticeID)
}

func TagKey(name string) string {
	return fmt.Sprintf(TagKeyPrefix, name)
}

func GroupKey(name string) string {
	return fmt.Sprintf(GroupKeyPrefix, name)
}

func UserTimelineKey(userID uint) string {
	return fmt.Sprintf(UserTimelineKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateGroup(ctx context.Context, name string) {
	Invalidate(ctx, GroupKey(name))
}

// InvalidateTimelines drops the public firehose cache and the author's own
// cached timeline after a commit. Follower timelines expire by TTL; a commit
// must not fan out invalidations.
func InvalidateTimelines(ctx context.Context, authorID uint) {
	Invalidate(ctx, PublicTimelineKey)
	Invalidate(ctx, UserTimelineKey(authorID))
}
