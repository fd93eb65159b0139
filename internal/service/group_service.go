package service

import (
	"context"
	"strings"

	"murmur/internal/models"
	"murmur/internal/parser"
	"murmur/internal/repository"
	"murmur/internal/validation"
)

// GroupService provides group lifecycle and membership business logic.
type GroupService struct {
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
	parser    *parser.Parser
}

// CreateGroupInput carries a group creation request.
type CreateGroupInput struct {
	OwnerID  uint
	Name     string
	IsClosed bool
}

// NewGroupService returns a new GroupService.
func NewGroupService(groupRepo repository.GroupRepository, userRepo repository.UserRepository, p *parser.Parser) *GroupService {
	return &GroupService{
		groupRepo: groupRepo,
		userRepo:  userRepo,
		parser:    p,
	}
}

// CreateGroup makes a new group and enrolls the owner as its first member.
// The name must fit the identifier grammar so !name references can reach it.
func (s *GroupService) CreateGroup(ctx context.Context, in CreateGroupInput) (*models.Group, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("Group name is required")
	}
	if !s.parser.ValidName(name) {
		return nil, models.NewValidationError("Group name contains invalid characters")
	}
	if validation.ReservedName(name) {
		return nil, models.NewValidationError("Group name is reserved")
	}
	if _, err := s.userRepo.GetByID(ctx, in.OwnerID); err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:     name,
		IsClosed: in.IsClosed,
		OwnerID:  in.OwnerID,
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}
	if _, err := s.groupRepo.AddMember(ctx, group.ID, in.OwnerID); err != nil {
		return nil, err
	}
	return s.groupRepo.GetByID(ctx, group.ID)
}

// GetGroup fetches a group by name.
func (s *GroupService) GetGroup(ctx context.Context, name string) (*models.Group, error) {
	group, err := s.groupRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, models.NewNotFoundError("Group", name)
	}
	return group, nil
}

// ListGroups pages through groups by member count.
func (s *GroupService) ListGroups(ctx context.Context, limit, offset int) ([]models.Group, error) {
	return s.groupRepo.List(ctx, limit, offset)
}

// GroupsForUser lists the groups the user belongs to.
func (s *GroupService) GroupsForUser(ctx context.Context, userID uint) ([]models.Group, error) {
	return s.groupRepo.ListForUser(ctx, userID)
}

// Join enrolls the user. Joining a group twice is absorbed.
func (s *GroupService) Join(ctx context.Context, userID uint, name string) (*models.Group, error) {
	group, err := s.GetGroup(ctx, name)
	if err != nil {
		return nil, err
	}
	if _, err := s.groupRepo.AddMember(ctx, group.ID, userID); err != nil {
		return nil, err
	}
	return s.groupRepo.GetByID(ctx, group.ID)
}

// Leave withdraws the user. The owner may leave; the group lives on.
func (s *GroupService) Leave(ctx context.Context, userID uint, name string) (*models.Group, error) {
	group, err := s.GetGroup(ctx, name)
	if err != nil {
		return nil, err
	}
	if _, err := s.groupRepo.RemoveMember(ctx, group.ID, userID); err != nil {
		return nil, err
	}
	return s.groupRepo.GetByID(ctx, group.ID)
}

// Members pages through a group's membership.
func (s *GroupService) Members(ctx context.Context, name string, limit, offset int) ([]models.User, error) {
	group, err := s.GetGroup(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.groupRepo.ListMembers(ctx, group.ID, limit, offset)
}
