package web

import (
	"github.com/gofiber/fiber/v2"
)

var focusAreas = []string{
	"Artificial Intelligence",
	"Machine Learning",
	"Computer Vision",
	"Natural Language Processing",
	"Autonomous Systems",
}

var coreValues = []fiber.Map{
	{"Title": "Sustainable innovation", "Text": "Technology that lasts and respects the world it runs in."},
	{"Title": "Future-ready solutions", "Text": "Systems built for the challenges of tomorrow."},
	{"Title": "Community impact", "Text": "Work that makes a real difference for people."},
}

// Home renders the landing page.
func (s *Server) Home(c *fiber.Ctx) error {
	projects := s.projectList(c.UserContext())
	if len(projects) > 3 {
		projects = projects[:3]
	}
	return c.Render("home", s.page(c, "Welcome to Lifewood", "", fiber.Map{
		"Values":   coreValues,
		"Projects": projects,
	}))
}

// About renders the company page.
func (s *Server) About(c *fiber.Ctx) error {
	return c.Render("about", s.page(c, "About Lifewood", "", fiber.Map{
		"Values":     coreValues,
		"FocusAreas": focusAreas,
	}))
}

// Projects lists the catalog with an apply link per project.
func (s *Server) Projects(c *fiber.Ctx) error {
	return c.Render("projects", s.page(c, "Our Projects", "", fiber.Map{
		"Projects": s.projectList(c.UserContext()),
	}))
}
