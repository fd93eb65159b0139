package service

import (
	"context"
	"time"

	"murmur/internal/cache"
	"murmur/internal/models"
	"murmur/internal/observability"
	"murmur/internal/repository"
)

// TimelineService assembles the read-side views: personal timelines, user
// profiles, the public firehose and the tag and group pages.
type TimelineService struct {
	noticeRepo repository.NoticeRepository
	userRepo   repository.UserRepository
	tagRepo    repository.TagRepository
	groupRepo  repository.GroupRepository
}

// NewTimelineService returns a new TimelineService.
func NewTimelineService(
	noticeRepo repository.NoticeRepository,
	userRepo repository.UserRepository,
	tagRepo repository.TagRepository,
	groupRepo repository.GroupRepository,
) *TimelineService {
	return &TimelineService{
		noticeRepo: noticeRepo,
		userRepo:   userRepo,
		tagRepo:    tagRepo,
		groupRepo:  groupRepo,
	}
}

// Home lists what the viewer may read, newest first.
func (s *TimelineService) Home(ctx context.Context, viewerID uint, limit, offset int) ([]models.Notice, error) {
	start := time.Now()
	notices, err := s.noticeRepo.Timeline(ctx, viewerID, limit, offset)
	observability.ObserveTimelineQuery("home", start)
	return notices, err
}

// Profile lists a user's record, newest first. Only the author sees their
// own restricted notices; everyone else gets the unrestricted subset.
func (s *TimelineService) Profile(ctx context.Context, username string, viewerID uint, limit, offset int) ([]models.Notice, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}

	start := time.Now()
	notices, err := s.noticeRepo.ForAuthor(ctx, user.ID, viewerID == user.ID, limit, offset)
	observability.ObserveTimelineQuery("profile", start)
	return notices, err
}

// publicPageSize is how many notices the cached first page holds. It matches
// the HTTP pagination cap, so every offset-0 caller can be served a full page
// from the same cache entry regardless of their requested limit.
const publicPageSize = 100

// Public lists the unrestricted firehose. The first page is served through
// the cache; deeper pages always hit the database.
func (s *TimelineService) Public(ctx context.Context, limit, offset int) ([]models.Notice, error) {
	start := time.Now()
	defer observability.ObserveTimelineQuery("public", start)

	if offset != 0 {
		return s.noticeRepo.Public(ctx, limit, offset)
	}

	var notices []models.Notice
	err := cache.Aside(ctx, cache.PublicTimelineKey, &notices, cache.PublicTimelineTTL, func() error {
		var fetchErr error
		notices, fetchErr = s.noticeRepo.Public(ctx, publicPageSize, 0)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	if len(notices) > limit {
		notices = notices[:limit]
	}
	return notices, nil
}

// Tag lists unrestricted notices carrying the named tag.
func (s *TimelineService) Tag(ctx context.Context, name string, limit, offset int) ([]models.Notice, error) {
	tag, err := s.tagRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	notices, err := s.noticeRepo.ForTag(ctx, tag.ID, limit, offset)
	observability.ObserveTimelineQuery("tag", start)
	return notices, err
}

// Group lists notices addressed to the named group. A closed group's page is
// for members only.
func (s *TimelineService) Group(ctx context.Context, name string, viewerID uint, limit, offset int) ([]models.Notice, error) {
	group, err := s.groupRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, models.NewNotFoundError("Group", name)
	}

	if group.IsClosed {
		isMember, err := s.groupRepo.IsMember(ctx, group.ID, viewerID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, models.NewUnauthorizedError("This group is closed to members")
		}
	}

	start := time.Now()
	notices, err := s.noticeRepo.ForGroup(ctx, group.ID, limit, offset)
	observability.ObserveTimelineQuery("group", start)
	return notices, err
}

// TopTags lists tags by use count for the tag cloud.
func (s *TimelineService) TopTags(ctx context.Context, limit int) ([]models.Tag, error) {
	return s.tagRepo.List(ctx, limit)
}
