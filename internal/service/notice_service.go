// Package service implements the business logic layer of the application.
package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"murmur/internal/models"
	"murmur/internal/observability"
	"murmur/internal/parser"
	"murmur/internal/repository"
)

// NoticeService implements the notice commit pipeline: validate, parse the
// text for annotations, resolve them against storage, derive visibility and
// persist everything atomically.
type NoticeService struct {
	noticeRepo repository.NoticeRepository
	userRepo   repository.UserRepository
	deviceRepo repository.DeviceRepository
	tagRepo    repository.TagRepository
	groupRepo  repository.GroupRepository
	parser     *parser.Parser
}

// PostNoticeInput carries one notice submission.
type PostNoticeInput struct {
	AuthorID uint
	Text     string
	Via      string
}

// NewNoticeService returns a new NoticeService.
func NewNoticeService(
	noticeRepo repository.NoticeRepository,
	userRepo repository.UserRepository,
	deviceRepo repository.DeviceRepository,
	tagRepo repository.TagRepository,
	groupRepo repository.GroupRepository,
	p *parser.Parser,
) *NoticeService {
	return &NoticeService{
		noticeRepo: noticeRepo,
		userRepo:   userRepo,
		deviceRepo: deviceRepo,
		tagRepo:    tagRepo,
		groupRepo:  groupRepo,
		parser:     p,
	}
}

// DefaultDevice is the posting channel assumed when a submission names none.
const DefaultDevice = "web"

// PostNotice runs the commit pipeline. Unknown group and username references
// in the text are dropped silently; unknown tags are created. The stored
// notice never records which references failed to resolve.
func (s *NoticeService) PostNotice(ctx context.Context, in PostNoticeInput) (*models.Notice, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, models.NewValidationError("Notice text is required")
	}
	if utf8.RuneCountInString(text) > models.NoticeMaxLen {
		return nil, models.NewValidationError("Notice text exceeds 140 characters")
	}

	if _, err := s.userRepo.GetByID(ctx, in.AuthorID); err != nil {
		return nil, err
	}

	via := in.Via
	if via == "" {
		via = DefaultDevice
	}
	device, err := s.deviceRepo.GetByName(ctx, via)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, models.NewNotFoundError("Device", via)
	}

	ann := s.parser.Parse(text)

	tags, err := s.tagRepo.ResolveNames(ctx, dedupe(ann.Tags))
	if err != nil {
		return nil, err
	}

	groups, err := s.groupRepo.FindByNames(ctx, dedupe(ann.Groups))
	if err != nil {
		return nil, err
	}

	replyTo, err := s.resolveMentions(ctx, ann.Usernames)
	if err != nil {
		return nil, err
	}

	notice := &models.Notice{
		Posted:       time.Now().UTC(),
		AuthorID:     in.AuthorID,
		Text:         text,
		ViaID:        device.ID,
		IsRestricted: restricted(groups),
	}
	if err := s.noticeRepo.Commit(ctx, notice, tags, groups, replyTo); err != nil {
		return nil, err
	}

	observability.NoticesCommitted.WithLabelValues(device.Name).Inc()
	return s.noticeRepo.GetByID(ctx, notice.ID)
}

// resolveMentions maps @username annotations to the mentioned users' last
// notices. A username with no account, or an account that has never posted,
// contributes nothing.
func (s *NoticeService) resolveMentions(ctx context.Context, usernames []string) ([]models.Notice, error) {
	var replyTo []models.Notice
	seen := make(map[uint]bool)
	for _, username := range dedupe(usernames) {
		user, err := s.userRepo.GetByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if user == nil || user.Info == nil || user.Info.LastNoticeID == nil {
			continue
		}
		id := *user.Info.LastNoticeID
		if seen[id] {
			continue
		}
		seen[id] = true
		replyTo = append(replyTo, models.Notice{ID: id})
	}
	return replyTo, nil
}

// restricted derives visibility from the attached groups: true iff there is
// at least one group and every one of them is closed.
func restricted(groups []models.Group) bool {
	if len(groups) == 0 {
		return false
	}
	for _, g := range groups {
		if !g.IsClosed {
			return false
		}
	}
	return true
}

// dedupe removes repeats while keeping first-occurrence order.
func dedupe(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(names))
	out := names[:0:0]
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// GetNotice fetches one notice with its annotations. Restricted notices are
// served only to their author and to members of an attached group; everyone
// else gets a not-found, the same answer an unknown ID gets.
func (s *NoticeService) GetNotice(ctx context.Context, id, viewerID uint) (*models.Notice, error) {
	notice, err := s.noticeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	visible, err := s.visibleTo(ctx, notice, viewerID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, models.NewNotFoundError("Notice", id)
	}
	return notice, nil
}

// visibleTo reports whether the viewer may read the notice.
func (s *NoticeService) visibleTo(ctx context.Context, notice *models.Notice, viewerID uint) (bool, error) {
	if !notice.IsRestricted {
		return true, nil
	}
	if viewerID == 0 {
		return false, nil
	}
	if notice.AuthorID == viewerID {
		return true, nil
	}
	for _, g := range notice.Groups {
		member, err := s.groupRepo.IsMember(ctx, g.ID, viewerID)
		if err != nil {
			return false, err
		}
		if member {
			return true, nil
		}
	}
	return false, nil
}

// DeleteNotice removes a notice. Only the author may do it.
func (s *NoticeService) DeleteNotice(ctx context.Context, userID, noticeID uint) error {
	notice, err := s.noticeRepo.GetByID(ctx, noticeID)
	if err != nil {
		return err
	}
	if notice.AuthorID != userID {
		return models.NewUnauthorizedError("You can only delete your own notices")
	}
	return s.noticeRepo.Delete(ctx, noticeID)
}

// Replies lists notices answering the given notice. The parent is gated the
// same way GetNotice gates it, and restricted replies are filtered per viewer.
func (s *NoticeService) Replies(ctx context.Context, noticeID, viewerID uint, limit, offset int) ([]models.Notice, error) {
	if _, err := s.GetNotice(ctx, noticeID, viewerID); err != nil {
		return nil, err
	}
	return s.noticeRepo.Replies(ctx, noticeID, viewerID, limit, offset)
}
