package service

import (
	"context"

	"murmur/internal/models"
)

// Function-field stubs for the repository interfaces. Fields left nil fall
// back to empty results so each test only wires what it asserts on.

type userRepoStub struct {
	getByIDFn         func(context.Context, uint) (*models.User, error)
	getByIDWithInfoFn func(context.Context, uint) (*models.User, error)
	getByEmailFn      func(context.Context, string) (*models.User, error)
	getByUsernameFn   func(context.Context, string) (*models.User, error)
	createFn          func(context.Context, *models.User) error
	updateFn          func(context.Context, *models.User) error
	deleteFn          func(context.Context, uint) error
	listFn            func(context.Context, int, int) ([]models.User, error)
	listFeaturedFn    func(context.Context, int) ([]models.User, error)
	getInfoFn         func(context.Context, uint) (*models.UserInfo, error)
	setFeaturedFn     func(context.Context, uint, bool) error
	addFavoriteFn     func(context.Context, uint, uint) (bool, error)
	removeFavoriteFn  func(context.Context, uint, uint) (bool, error)
	listFavoritesFn   func(context.Context, uint, int, int) ([]models.Notice, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if s.getByIDFn == nil {
		return &models.User{ID: id}, nil
	}
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDWithInfo(ctx context.Context, id uint) (*models.User, error) {
	if s.getByIDWithInfoFn == nil {
		return &models.User{ID: id}, nil
	}
	return s.getByIDWithInfoFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.getByEmailFn == nil {
		return nil, nil
	}
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.getByUsernameFn == nil {
		return nil, nil
	}
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) ListFeatured(ctx context.Context, limit int) ([]models.User, error) {
	if s.listFeaturedFn == nil {
		return nil, nil
	}
	return s.listFeaturedFn(ctx, limit)
}
func (s *userRepoStub) GetInfo(ctx context.Context, userID uint) (*models.UserInfo, error) {
	if s.getInfoFn == nil {
		return &models.UserInfo{UserID: userID}, nil
	}
	return s.getInfoFn(ctx, userID)
}
func (s *userRepoStub) SetFeatured(ctx context.Context, userID uint, featured bool) error {
	if s.setFeaturedFn == nil {
		return nil
	}
	return s.setFeaturedFn(ctx, userID, featured)
}
func (s *userRepoStub) AddFavorite(ctx context.Context, userID, noticeID uint) (bool, error) {
	if s.addFavoriteFn == nil {
		return true, nil
	}
	return s.addFavoriteFn(ctx, userID, noticeID)
}
func (s *userRepoStub) RemoveFavorite(ctx context.Context, userID, noticeID uint) (bool, error) {
	if s.removeFavoriteFn == nil {
		return true, nil
	}
	return s.removeFavoriteFn(ctx, userID, noticeID)
}
func (s *userRepoStub) ListFavorites(ctx context.Context, userID uint, limit, offset int) ([]models.Notice, error) {
	if s.listFavoritesFn == nil {
		return nil, nil
	}
	return s.listFavoritesFn(ctx, userID, limit, offset)
}

type noticeRepoStub struct {
	commitFn    func(context.Context, *models.Notice, []models.Tag, []models.Group, []models.Notice) error
	getByIDFn   func(context.Context, uint) (*models.Notice, error)
	deleteFn    func(context.Context, uint) error
	forAuthorFn func(context.Context, uint, bool, int, int) ([]models.Notice, error)
	timelineFn  func(context.Context, uint, int, int) ([]models.Notice, error)
	publicFn    func(context.Context, int, int) ([]models.Notice, error)
	forTagFn    func(context.Context, uint, int, int) ([]models.Notice, error)
	forGroupFn  func(context.Context, uint, int, int) ([]models.Notice, error)
	repliesFn   func(context.Context, uint, uint, int, int) ([]models.Notice, error)
}

func (s *noticeRepoStub) Commit(ctx context.Context, notice *models.Notice, tags []models.Tag, groups []models.Group, replyTo []models.Notice) error {
	if s.commitFn == nil {
		notice.ID = 1
		return nil
	}
	return s.commitFn(ctx, notice, tags, groups, replyTo)
}
func (s *noticeRepoStub) GetByID(ctx context.Context, id uint) (*models.Notice, error) {
	if s.getByIDFn == nil {
		return &models.Notice{ID: id}, nil
	}
	return s.getByIDFn(ctx, id)
}
func (s *noticeRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, id)
}
func (s *noticeRepoStub) ForAuthor(ctx context.Context, authorID uint, includeRestricted bool, limit, offset int) ([]models.Notice, error) {
	if s.forAuthorFn == nil {
		return nil, nil
	}
	return s.forAuthorFn(ctx, authorID, includeRestricted, limit, offset)
}
func (s *noticeRepoStub) Timeline(ctx context.Context, viewerID uint, limit, offset int) ([]models.Notice, error) {
	if s.timelineFn == nil {
		return nil, nil
	}
	return s.timelineFn(ctx, viewerID, limit, offset)
}
func (s *noticeRepoStub) Public(ctx context.Context, limit, offset int) ([]models.Notice, error) {
	if s.publicFn == nil {
		return nil, nil
	}
	return s.publicFn(ctx, limit, offset)
}
func (s *noticeRepoStub) ForTag(ctx context.Context, tagID uint, limit, offset int) ([]models.Notice, error) {
	if s.forTagFn == nil {
		return nil, nil
	}
	return s.forTagFn(ctx, tagID, limit, offset)
}
func (s *noticeRepoStub) ForGroup(ctx context.Context, groupID uint, limit, offset int) ([]models.Notice, error) {
	if s.forGroupFn == nil {
		return nil, nil
	}
	return s.forGroupFn(ctx, groupID, limit, offset)
}
func (s *noticeRepoStub) Replies(ctx context.Context, noticeID, viewerID uint, limit, offset int) ([]models.Notice, error) {
	if s.repliesFn == nil {
		return nil, nil
	}
	return s.repliesFn(ctx, noticeID, viewerID, limit, offset)
}

type deviceRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.Device, error)
	getByNameFn     func(context.Context, string) (*models.Device, error)
	firstOrCreateFn func(context.Context, string, string) (*models.Device, error)
	listFn          func(context.Context, int) ([]models.Device, error)
}

func (s *deviceRepoStub) GetByID(ctx context.Context, id uint) (*models.Device, error) {
	if s.getByIDFn == nil {
		return &models.Device{ID: id}, nil
	}
	return s.getByIDFn(ctx, id)
}
func (s *deviceRepoStub) GetByName(ctx context.Context, name string) (*models.Device, error) {
	if s.getByNameFn == nil {
		return &models.Device{ID: 1, Name: name}, nil
	}
	return s.getByNameFn(ctx, name)
}
func (s *deviceRepoStub) FirstOrCreate(ctx context.Context, name, url string) (*models.Device, error) {
	if s.firstOrCreateFn == nil {
		return &models.Device{ID: 1, Name: name, URL: url}, nil
	}
	return s.firstOrCreateFn(ctx, name, url)
}
func (s *deviceRepoStub) List(ctx context.Context, limit int) ([]models.Device, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit)
}

type tagRepoStub struct {
	getByNameFn    func(context.Context, string) (*models.Tag, error)
	resolveNamesFn func(context.Context, []string) ([]models.Tag, error)
	listFn         func(context.Context, int) ([]models.Tag, error)
}

func (s *tagRepoStub) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	if s.getByNameFn == nil {
		return &models.Tag{ID: 1, Name: name}, nil
	}
	return s.getByNameFn(ctx, name)
}
func (s *tagRepoStub) ResolveNames(ctx context.Context, names []string) ([]models.Tag, error) {
	if s.resolveNamesFn == nil {
		tags := make([]models.Tag, len(names))
		for i, n := range names {
			tags[i] = models.Tag{ID: uint(i + 1), Name: n}
		}
		return tags, nil
	}
	return s.resolveNamesFn(ctx, names)
}
func (s *tagRepoStub) List(ctx context.Context, limit int) ([]models.Tag, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit)
}

type groupRepoStub struct {
	createFn       func(context.Context, *models.Group) error
	getByIDFn      func(context.Context, uint) (*models.Group, error)
	getByNameFn    func(context.Context, string) (*models.Group, error)
	findByNamesFn  func(context.Context, []string) ([]models.Group, error)
	listFn         func(context.Context, int, int) ([]models.Group, error)
	listForUserFn  func(context.Context, uint) ([]models.Group, error)
	addMemberFn    func(context.Context, uint, uint) (bool, error)
	removeMemberFn func(context.Context, uint, uint) (bool, error)
	isMemberFn     func(context.Context, uint, uint) (bool, error)
	listMembersFn  func(context.Context, uint, int, int) ([]models.User, error)
}

func (s *groupRepoStub) Create(ctx context.Context, group *models.Group) error {
	if s.createFn == nil {
		group.ID = 1
		return nil
	}
	return s.createFn(ctx, group)
}
func (s *groupRepoStub) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	if s.getByIDFn == nil {
		return &models.Group{ID: id}, nil
	}
	return s.getByIDFn(ctx, id)
}
func (s *groupRepoStub) GetByName(ctx context.Context, name string) (*models.Group, error) {
	if s.getByNameFn == nil {
		return nil, nil
	}
	return s.getByNameFn(ctx, name)
}
func (s *groupRepoStub) FindByNames(ctx context.Context, names []string) ([]models.Group, error) {
	if s.findByNamesFn == nil {
		return nil, nil
	}
	return s.findByNamesFn(ctx, names)
}
func (s *groupRepoStub) List(ctx context.Context, limit, offset int) ([]models.Group, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}
func (s *groupRepoStub) ListForUser(ctx context.Context, userID uint) ([]models.Group, error) {
	if s.listForUserFn == nil {
		return nil, nil
	}
	return s.listForUserFn(ctx, userID)
}
func (s *groupRepoStub) AddMember(ctx context.Context, groupID, userID uint) (bool, error) {
	if s.addMemberFn == nil {
		return true, nil
	}
	return s.addMemberFn(ctx, groupID, userID)
}
func (s *groupRepoStub) RemoveMember(ctx context.Context, groupID, userID uint) (bool, error) {
	if s.removeMemberFn == nil {
		return true, nil
	}
	return s.removeMemberFn(ctx, groupID, userID)
}
func (s *groupRepoStub) IsMember(ctx context.Context, groupID, userID uint) (bool, error) {
	if s.isMemberFn == nil {
		return false, nil
	}
	return s.isMemberFn(ctx, groupID, userID)
}
func (s *groupRepoStub) ListMembers(ctx context.Context, groupID uint, limit, offset int) ([]models.User, error) {
	if s.listMembersFn == nil {
		return nil, nil
	}
	return s.listMembersFn(ctx, groupID, limit, offset)
}

type relationshipRepoStub struct {
	createFollowFn   func(context.Context, uint, uint) (bool, error)
	deleteFollowFn   func(context.Context, uint, uint) (bool, error)
	followExistsFn   func(context.Context, uint, uint) (bool, error)
	createBlockFn    func(context.Context, uint, uint) (bool, error)
	deleteBlockFn    func(context.Context, uint, uint) (bool, error)
	blockExistsFn    func(context.Context, uint, uint) (bool, error)
	followersFn      func(context.Context, uint, int, int) ([]models.User, error)
	followingFn      func(context.Context, uint, int, int) ([]models.User, error)
	countFollowersFn func(context.Context, uint) (int64, error)
	countFollowingFn func(context.Context, uint) (int64, error)
}

func (s *relationshipRepoStub) CreateFollow(ctx context.Context, followerID, followedID uint) (bool, error) {
	if s.createFollowFn == nil {
		return true, nil
	}
	return s.createFollowFn(ctx, followerID, followedID)
}
func (s *relationshipRepoStub) DeleteFollow(ctx context.Context, followerID, followedID uint) (bool, error) {
	if s.deleteFollowFn == nil {
		return true, nil
	}
	return s.deleteFollowFn(ctx, followerID, followedID)
}
func (s *relationshipRepoStub) FollowExists(ctx context.Context, followerID, followedID uint) (bool, error) {
	if s.followExistsFn == nil {
		return false, nil
	}
	return s.followExistsFn(ctx, followerID, followedID)
}
func (s *relationshipRepoStub) CreateBlock(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	if s.createBlockFn == nil {
		return true, nil
	}
	return s.createBlockFn(ctx, blockerID, blockedID)
}
func (s *relationshipRepoStub) DeleteBlock(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	if s.deleteBlockFn == nil {
		return true, nil
	}
	return s.deleteBlockFn(ctx, blockerID, blockedID)
}
func (s *relationshipRepoStub) BlockExists(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	if s.blockExistsFn == nil {
		return false, nil
	}
	return s.blockExistsFn(ctx, blockerID, blockedID)
}
func (s *relationshipRepoStub) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	if s.followersFn == nil {
		return nil, nil
	}
	return s.followersFn(ctx, userID, limit, offset)
}
func (s *relationshipRepoStub) Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	if s.followingFn == nil {
		return nil, nil
	}
	return s.followingFn(ctx, userID, limit, offset)
}
func (s *relationshipRepoStub) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	if s.countFollowersFn == nil {
		return 0, nil
	}
	return s.countFollowersFn(ctx, userID)
}
func (s *relationshipRepoStub) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	if s.countFollowingFn == nil {
		return 0, nil
	}
	return s.countFollowingFn(ctx, userID)
}
