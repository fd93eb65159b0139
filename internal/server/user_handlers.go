package server

import (
	"murmur/internal/models"
	"murmur/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Bio      string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:   currentUserID(c),
		Username: req.Username,
		Bio:      req.Bio,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:username
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByUsername(c.Context(), c.Params("username"))
	if err != nil {
		return respondServiceError(c, err)
	}

	followers, err := s.relRepo.CountFollowers(c.Context(), user.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	following, err := s.relRepo.CountFollowing(c.Context(), user.ID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":            user,
		"followers_count": followers,
		"following_count": following,
	})
}

// GetFeaturedUsers handles GET /api/users/featured
func (s *Server) GetFeaturedUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 10)

	users, err := s.userService.FeaturedUsers(c.Context(), p.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetMyFavorites handles GET /api/me/favorites
func (s *Server) GetMyFavorites(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	notices, err := s.userService.Favorites(c.Context(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"favorites": notices})
}

// GetDevices handles GET /api/devices
func (s *Server) GetDevices(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	devices, err := s.deviceRepo.List(c.Context(), p.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"devices": devices})
}
