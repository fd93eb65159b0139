package server

import (
	"github.com/gofiber/fiber/v2"
)

// Subscribe handles POST /api/users/:username/subscribe
func (s *Server) Subscribe(c *fiber.Ctx) error {
	target, err := s.resolveUserParam(c)
	if err != nil {
		return nil
	}

	created, err := s.relService.Subscribe(c.Context(), currentUserID(c), target.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"subscribed": true, "created": created})
}

// Unsubscribe handles DELETE /api/users/:username/subscribe
func (s *Server) Unsubscribe(c *fiber.Ctx) error {
	target, err := s.resolveUserParam(c)
	if err != nil {
		return nil
	}

	deleted, err := s.relService.Unsubscribe(c.Context(), currentUserID(c), target.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"subscribed": false, "removed": deleted})
}

// BlockUser handles POST /api/users/:username/block
func (s *Server) BlockUser(c *fiber.Ctx) error {
	target, err := s.resolveUserParam(c)
	if err != nil {
		return nil
	}

	created, err := s.relService.Block(c.Context(), currentUserID(c), target.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"blocked": true, "created": created})
}

// UnblockUser handles DELETE /api/users/:username/block
func (s *Server) UnblockUser(c *fiber.Ctx) error {
	target, err := s.resolveUserParam(c)
	if err != nil {
		return nil
	}

	deleted, err := s.relService.Unblock(c.Context(), currentUserID(c), target.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"blocked": false, "removed": deleted})
}

// GetRelationship handles GET /api/users/:username/relationship
func (s *Server) GetRelationship(c *fiber.Ctx) error {
	target, err := s.resolveUserParam(c)
	if err != nil {
		return nil
	}
	me := currentUserID(c)

	following, err := s.relService.IsFollowing(c.Context(), me, target.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	followedBy, err := s.relService.IsFollowing(c.Context(), target.ID, me)
	if err != nil {
		return respondServiceError(c, err)
	}
	blocked, err := s.relService.IsBlocked(c.Context(), me, target.ID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"following":   following,
		"followed_by": followedBy,
		"blocked":     blocked,
	})
}

// GetFollowers handles GET /api/users/:username/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	target, err := s.resolveUserParam(c)
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	users, err := s.relService.Followers(c.Context(), target.ID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"followers": users})
}

// GetFollowing handles GET /api/users/:username/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	target, err := s.resolveUserParam(c)
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	users, err := s.relService.Following(c.Context(), target.ID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"following": users})
}
