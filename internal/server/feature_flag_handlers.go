package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags handles GET /api/flags. Percentage rollouts evaluate
// against the viewer, so anonymous requests only see absolute flags on.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(viewerID(c)),
	})
}
