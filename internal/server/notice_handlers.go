package server

import (
	"murmur/internal/models"
	"murmur/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateNotice handles POST /api/notices
func (s *Server) CreateNotice(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
		Via  string `json:"via"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	notice, err := s.noticeService.PostNotice(c.Context(), service.PostNoticeInput{
		AuthorID: currentUserID(c),
		Text:     req.Text,
		Via:      req.Via,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(notice)
}

// GetNotice handles GET /api/notices/:id
func (s *Server) GetNotice(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	notice, err := s.noticeService.GetNotice(c.Context(), id, viewerID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(notice)
}

// DeleteNotice handles DELETE /api/notices/:id
func (s *Server) DeleteNotice(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.noticeService.DeleteNotice(c.Context(), currentUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetReplies handles GET /api/notices/:id/replies
func (s *Server) GetReplies(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	notices, err := s.noticeService.Replies(c.Context(), id, viewerID(c), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"replies": notices})
}

// FavoriteNotice handles POST /api/notices/:id/favorite
func (s *Server) FavoriteNotice(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	added, err := s.userService.Favorite(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"favorited": true, "added": added})
}

// UnfavoriteNotice handles DELETE /api/notices/:id/favorite
func (s *Server) UnfavoriteNotice(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	removed, err := s.userService.Unfavorite(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"favorited": false, "removed": removed})
}
