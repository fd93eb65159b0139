package server

import (
	"murmur/internal/models"
	"murmur/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateGroup handles POST /api/groups
func (s *Server) CreateGroup(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		IsClosed bool   `json:"is_closed"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	group, err := s.groupService.CreateGroup(c.Context(), service.CreateGroupInput{
		OwnerID:  currentUserID(c),
		Name:     req.Name,
		IsClosed: req.IsClosed,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

// GetGroups handles GET /api/groups
func (s *Server) GetGroups(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	groups, err := s.groupService.ListGroups(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"groups": groups})
}

// GetGroup handles GET /api/groups/:name
func (s *Server) GetGroup(c *fiber.Ctx) error {
	group, err := s.groupService.GetGroup(c.Context(), c.Params("name"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(group)
}

// JoinGroup handles POST /api/groups/:name/join
func (s *Server) JoinGroup(c *fiber.Ctx) error {
	group, err := s.groupService.Join(c.Context(), currentUserID(c), c.Params("name"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(group)
}

// LeaveGroup handles DELETE /api/groups/:name/join
func (s *Server) LeaveGroup(c *fiber.Ctx) error {
	group, err := s.groupService.Leave(c.Context(), currentUserID(c), c.Params("name"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(group)
}

// GetGroupMembers handles GET /api/groups/:name/members
func (s *Server) GetGroupMembers(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	users, err := s.groupService.Members(c.Context(), c.Params("name"), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"members": users})
}

// GetMyGroups handles GET /api/me/groups
func (s *Server) GetMyGroups(c *fiber.Ctx) error {
	groups, err := s.groupService.GroupsForUser(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"groups": groups})
}
