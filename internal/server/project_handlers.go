package server

import (
	"lifewood/internal/cache"
	"lifewood/internal/catalog"
	"lifewood/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetProjects handles GET /api/projects
// @Summary List projects
// @Description The catalog of projects applicants can apply for
// @Tags projects
// @Produce json
// @Success 200 {array} catalog.Project
// @Router /projects [get]
func (s *Server) GetProjects(c *fiber.Ctx) error {
	var projects []catalog.Project
	err := cache.Aside(c.UserContext(), "projects", cache.ProjectCatalogKey, &projects, cache.ProjectCatalogTTL, func() error {
		projects = s.projects.List()
		return nil
	})
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(projects)
}
