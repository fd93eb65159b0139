package service

import (
	"context"

	"murmur/internal/models"
	"murmur/internal/repository"
)

// RelationshipService provides subscribe and block business logic.
type RelationshipService struct {
	relRepo  repository.RelationshipRepository
	userRepo repository.UserRepository
}

// NewRelationshipService returns a new RelationshipService.
func NewRelationshipService(relRepo repository.RelationshipRepository, userRepo repository.UserRepository) *RelationshipService {
	return &RelationshipService{
		relRepo:  relRepo,
		userRepo: userRepo,
	}
}

// Subscribe makes follower read followed's notices. It is refused when the
// target has blocked the follower. Repeating an existing subscription is not
// an error; the return value reports whether a new edge was created.
func (s *RelationshipService) Subscribe(ctx context.Context, followerID, followedID uint) (bool, error) {
	if followerID == followedID {
		return false, models.NewValidationError("Cannot subscribe to yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, followedID); err != nil {
		return false, err
	}

	blocked, err := s.relRepo.BlockExists(ctx, followedID, followerID)
	if err != nil {
		return false, err
	}
	if blocked {
		return false, models.NewValidationError("Cannot subscribe to this user")
	}

	return s.relRepo.CreateFollow(ctx, followerID, followedID)
}

// Unsubscribe removes the follow edge if present. Returns whether anything
// was deleted; unsubscribing twice is fine.
func (s *RelationshipService) Unsubscribe(ctx context.Context, followerID, followedID uint) (bool, error) {
	if followerID == followedID {
		return false, models.NewValidationError("Cannot unsubscribe from yourself")
	}
	return s.relRepo.DeleteFollow(ctx, followerID, followedID)
}

// Block stops the target from following the caller, revoking any follow edge
// the target holds. Reports whether a new block edge was created.
func (s *RelationshipService) Block(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	if blockerID == blockedID {
		return false, models.NewValidationError("Cannot block yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, blockedID); err != nil {
		return false, err
	}

	return s.relRepo.CreateBlock(ctx, blockerID, blockedID)
}

// Unblock removes the block edge if present and reports whether it existed.
// The revoked follow is not restored.
func (s *RelationshipService) Unblock(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	if blockerID == blockedID {
		return false, models.NewValidationError("Cannot unblock yourself")
	}
	return s.relRepo.DeleteBlock(ctx, blockerID, blockedID)
}

// IsFollowing reports whether follower reads followed.
func (s *RelationshipService) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.relRepo.FollowExists(ctx, followerID, followedID)
}

// IsBlocked reports whether blocker has blocked blocked.
func (s *RelationshipService) IsBlocked(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	return s.relRepo.BlockExists(ctx, blockerID, blockedID)
}

// Followers lists who reads the user.
func (s *RelationshipService) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.relRepo.Followers(ctx, userID, limit, offset)
}

// Following lists who the user reads.
func (s *RelationshipService) Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.relRepo.Following(ctx, userID, limit, offset)
}
