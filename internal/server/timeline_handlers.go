package server

import (
	"murmur/internal/models"

	"github.com/gofiber/fiber/v2"
)

// HomeTimeline handles GET /api/me/timeline
func (s *Server) HomeTimeline(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	notices, err := s.timelineService.Home(c.Context(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"notices": notices})
}

// PublicTimeline handles GET /api/timeline/public
func (s *Server) PublicTimeline(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	notices, err := s.timelineService.Public(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"notices": notices})
}

// UserNotices handles GET /api/users/:username/notices
func (s *Server) UserNotices(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	notices, err := s.timelineService.Profile(c.Context(), c.Params("username"), viewerID(c), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"notices": notices})
}

// TagNotices handles GET /api/tags/:name/notices
func (s *Server) TagNotices(c *fiber.Ctx) error {
	name := c.Params("name")
	if name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Tag name is required"))
	}
	p := parsePagination(c, 20)

	notices, err := s.timelineService.Tag(c.Context(), name, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"notices": notices})
}

// GroupNotices handles GET /api/groups/:name/notices
func (s *Server) GroupNotices(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	notices, err := s.timelineService.Group(c.Context(), c.Params("name"), viewerID(c), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"notices": notices})
}

// GetTags handles GET /api/tags
func (s *Server) GetTags(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	tags, err := s.timelineService.TopTags(c.Context(), p.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"tags": tags})
}
