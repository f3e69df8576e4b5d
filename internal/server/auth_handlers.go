package server

import (
	"strings"

	"lifewood/internal/middleware"
	"lifewood/internal/models"
	"lifewood/internal/notifications"
	"lifewood/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// AdminLogin handles POST /api/admin/login
// @Summary Admin login
// @Description Exchanges admin credentials for a bearer token
// @Tags admin
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} models.AuthResponse
// @Router /admin/login [post]
func (s *Server) AdminLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.AuthResponse{
			Message: "Invalid request body",
		})
	}

	if err := validation.Struct(req, validation.Messages{
		"Email.required":    validation.MsgEmailRequired,
		"Email.email":       validation.MsgEmailInvalid,
		"Password.required": validation.MsgPasswordRequired,
	}); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.AuthResponse{Message: err.Error()})
	}

	resp, err := s.adminService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	if !resp.Success {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}
	return c.JSON(resp)
}

// ValidateToken handles GET /api/admin/validate
// @Summary Validate admin token
// @Tags admin
// @Produce plain
// @Security BearerAuth
// @Success 200 {string} string "Token is valid"
// @Failure 401 {string} string "Invalid token"
// @Router /admin/validate [get]
func (s *Server) ValidateToken(c *fiber.Ctx) error {
	token, problem := middleware.BearerToken(c)
	if problem != "" {
		return c.Status(fiber.StatusUnauthorized).SendString(validation.MsgInvalidToken)
	}
	if _, err := s.adminService.ParseToken(c.UserContext(), token); err != nil {
		return c.Status(fiber.StatusUnauthorized).SendString(validation.MsgInvalidToken)
	}
	return c.SendString(validation.MsgTokenValid)
}

// AdminLogout handles POST /api/admin/logout
// @Summary Admin logout
// @Description Revokes the presented token for the rest of its lifetime
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.AppError
// @Router /admin/logout [post]
func (s *Server) AdminLogout(c *fiber.Ctx) error {
	token, _ := middleware.BearerToken(c)
	claims, err := s.adminService.ParseToken(c.UserContext(), token)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	if err := s.adminService.Logout(c.UserContext(), claims); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// GetCurrentAdmin handles GET /api/admin/me
// @Summary Current admin profile
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Admin
// @Failure 401 {object} models.AppError
// @Router /admin/me [get]
func (s *Server) GetCurrentAdmin(c *fiber.Ctx) error {
	admin, err := s.adminService.GetAdmin(c.UserContext(), middleware.AdminID(c))
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(admin)
}

type testMailRequest struct {
	To   string `json:"to" validate:"required,email"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// SendTestMail handles POST /api/admin/mail/test
// @Summary Send a sample decision mail
// @Description Sends the approval (default) or decline mail to the given address
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{to=string,name=string,kind=string} true "Recipient and mail kind"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.AppError
// @Router /admin/mail/test [post]
func (s *Server) SendTestMail(c *fiber.Ctx) error {
	var req testMailRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(validation.MsgMailRecipientNeeded))
	}
	req.To = strings.TrimSpace(req.To)
	if err := validation.Struct(req, validation.Messages{
		"To.required": validation.MsgMailRecipientNeeded,
		"To.email":    validation.MsgEmailInvalid,
	}); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError(err.Error()))
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Applicant"
	}
	kind, ok := notifications.ParseKind(req.Kind)
	if !ok {
		kind = notifications.KindDecline
	}

	if err := s.mailer.Notify(c.UserContext(), kind, req.To, name); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Failed to send test email: "+err.Error()))
	}
	return c.JSON(fiber.Map{"message": "Test email sent: " + string(kind) + " to " + req.To})
}

