package service

import (
	"context"
	"strings"

	"murmur/internal/models"
	"murmur/internal/parser"
	"murmur/internal/repository"
	"murmur/internal/validation"
)

// UserService provides profile, favorite and featured-user business logic.
type UserService struct {
	userRepo repository.UserRepository
	parser   *parser.Parser
}

// UpdateProfileInput carries a profile edit.
type UpdateProfileInput struct {
	UserID   uint
	Username string
	Bio      string
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, p *parser.Parser) *UserService {
	return &UserService{userRepo: userRepo, parser: p}
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByIDWithInfo(ctx, id)
}

// GetUserByUsername fetches a profile. Unlike the repository method this is a
// lookup the caller asked for by name, so a miss is an error.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxBioLen = 500

	if in.Username != "" {
		username := strings.TrimSpace(in.Username)
		if !s.parser.ValidUsername(username) {
			return nil, models.NewValidationError("Username contains invalid characters")
		}
		if validation.ReservedName(username) {
			return nil, models.NewValidationError("Username is reserved")
		}
		user.Username = username
	}
	if in.Bio != "" {
		if len(in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = in.Bio
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Favorite marks a notice as a favorite of the user. Doing it twice changes
// nothing; the returned flag says whether this call added it.
func (s *UserService) Favorite(ctx context.Context, userID, noticeID uint) (bool, error) {
	return s.userRepo.AddFavorite(ctx, userID, noticeID)
}

// Unfavorite removes the mark, reporting whether it was there.
func (s *UserService) Unfavorite(ctx context.Context, userID, noticeID uint) (bool, error) {
	return s.userRepo.RemoveFavorite(ctx, userID, noticeID)
}

// Favorites pages through the user's favorite notices, newest first.
func (s *UserService) Favorites(ctx context.Context, userID uint, limit, offset int) ([]models.Notice, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.userRepo.ListFavorites(ctx, userID, limit, offset)
}

// FeaturedUsers lists accounts curated onto the front page.
func (s *UserService) FeaturedUsers(ctx context.Context, limit int) ([]models.User, error) {
	return s.userRepo.ListFeatured(ctx, limit)
}

// SetFeatured toggles whether the user is featured.
func (s *UserService) SetFeatured(ctx context.Context, userID uint, featured bool) (*models.User, error) {
	if err := s.userRepo.SetFeatured(ctx, userID, featured); err != nil {
		return nil, err
	}
	return s.userRepo.GetByIDWithInfo(ctx, userID)
}
