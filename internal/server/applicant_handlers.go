package server

import (
	"strconv"
	"strings"

	"lifewood/internal/models"
	"lifewood/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetApplicants handles GET /api/applicants
// @Summary List applicants
// @Description Returns every applicant ordered by id
// @Tags applicants
// @Produce json
// @Success 200 {array} models.Applicant
// @Router /applicants [get]
func (s *Server) GetApplicants(c *fiber.Ctx) error {
	applicants, err := s.applicantService.List(c.UserContext())
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(applicants)
}

// GetApplicant handles GET /api/applicants/:id
// @Summary Get applicant
// @Tags applicants
// @Produce json
// @Param id path int true "Applicant ID"
// @Success 200 {object} models.Applicant
// @Failure 404 {object} models.AppError
// @Router /applicants/{id} [get]
func (s *Server) GetApplicant(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	applicant, err := s.applicantService.Get(c.UserContext(), id)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(applicant)
}

// CreateApplicant handles POST /api/applicants
// @Summary Submit an application
// @Description Multipart form with the applicant fields and an optional resume (PDF or Word, at most 5MB)
// @Tags applicants
// @Accept mpfd
// @Produce json
// @Param firstName formData string true "First name"
// @Param lastName formData string true "Last name"
// @Param age formData int true "Age, at least 18"
// @Param degree formData string true "Degree"
// @Param relevantExperience formData string true "Relevant experience"
// @Param email formData string true "Email"
// @Param projectAppliedFor formData string true "Project title"
// @Param resume formData file false "Resume"
// @Success 201 {object} models.Applicant
// @Failure 400 {object} models.AppError
// @Failure 409 {object} models.AppError
// @Router /applicants [post]
func (s *Server) CreateApplicant(c *fiber.Ctx) error {
	in, err := applicantForm(c)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}

	resume, err := formResume(c, "resume")
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}

	applicant, err := s.applicantService.Create(c.UserContext(), in, resume)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(applicant)
}

// applicantForm reads the applicant fields of a multipart or urlencoded
// form. A non-numeric age is reported instead of being read as zero.
func applicantForm(c *fiber.Ctx) (models.ApplicantInput, error) {
	rawAge := strings.TrimSpace(c.FormValue("age"))
	if msg := validation.AgeText(rawAge); msg == validation.MsgAgeNotNumber {
		return models.ApplicantInput{}, models.NewValidationError(msg)
	}
	age, _ := strconv.Atoi(rawAge)

	return models.ApplicantInput{
		FirstName:          c.FormValue("firstName"),
		LastName:           c.FormValue("lastName"),
		Age:                age,
		Degree:             c.FormValue("degree"),
		RelevantExperience: c.FormValue("relevantExperience"),
		Email:              c.FormValue("email"),
		ProjectAppliedFor:  c.FormValue("projectAppliedFor"),
	}, nil
}

// UpdateApplicant handles PUT /api/applicants/:id
// @Summary Update applicant
// @Description Replaces the editable fields. A blank status keeps the current one.
// @Tags applicants
// @Accept json
// @Produce json
// @Param id path int true "Applicant ID"
// @Param request body models.ApplicantInput true "Applicant fields"
// @Success 200 {object} models.Applicant
// @Failure 400 {object} models.AppError
// @Failure 404 {object} models.AppError
// @Failure 409 {object} models.AppError
// @Router /applicants/{id} [put]
func (s *Server) UpdateApplicant(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req models.ApplicantInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	applicant, err := s.applicantService.Update(c.UserContext(), id, req)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(applicant)
}

// UploadResume handles PUT /api/applicants/:id/resume
// @Summary Store or replace a resume
// @Tags applicants
// @Accept mpfd
// @Produce json
// @Param id path int true "Applicant ID"
// @Param resume formData file true "Resume"
// @Success 200 {object} models.Applicant
// @Failure 400 {object} models.AppError
// @Failure 404 {object} models.AppError
// @Router /applicants/{id}/resume [put]
func (s *Server) UploadResume(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	resume, err := formResume(c, "resume")
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}

	applicant, err := s.applicantService.UploadResume(c.UserContext(), id, resume)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(applicant)
}

// GetResume handles GET /api/applicants/:id/resume
// @Summary Fetch a resume
// @Description Streams the stored file. download=true sends it as an attachment, otherwise inline.
// @Tags applicants
// @Produce application/pdf,application/msword,application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Param id path int true "Applicant ID"
// @Param download query bool false "Send as attachment"
// @Success 200 {file} file
// @Failure 404 {object} models.AppError
// @Router /applicants/{id}/resume [get]
func (s *Server) GetResume(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	file, err := s.applicantService.Resume(c.UserContext(), id)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, contentDisposition(c.QueryBool("download"), file.FileName))
	return c.Send(file.Data)
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateApplicantStatus handles PUT /api/applicants/:id/status
// @Summary Set applicant status
// @Description Accepts pending, approved, rejected or declined. Approved and rejected send the matching mail.
// @Tags applicants
// @Accept json
// @Produce json
// @Param id path int true "Applicant ID"
// @Param request body object{status=string} true "New status"
// @Success 200 {object} models.Applicant
// @Failure 400 {object} models.AppError
// @Failure 404 {object} models.AppError
// @Router /applicants/{id}/status [put]
func (s *Server) UpdateApplicantStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(validation.MsgStatusRequired))
	}

	applicant, err := s.applicantService.UpdateStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(applicant)
}

// ApproveApplicant handles PUT /api/applicants/:id/approve
// @Summary Approve applicant
// @Tags applicants
// @Produce json
// @Param id path int true "Applicant ID"
// @Success 200 {object} models.Applicant
// @Failure 404 {object} models.AppError
// @Router /applicants/{id}/approve [put]
func (s *Server) ApproveApplicant(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	applicant, err := s.applicantService.Approve(c.UserContext(), id)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(applicant)
}

// DeclineApplicant handles PUT /api/applicants/:id/decline
// @Summary Decline applicant
// @Tags applicants
// @Produce json
// @Param id path int true "Applicant ID"
// @Success 200 {object} models.Applicant
// @Failure 404 {object} models.AppError
// @Router /applicants/{id}/decline [put]
func (s *Server) DeclineApplicant(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	applicant, err := s.applicantService.Decline(c.UserContext(), id)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(applicant)
}

// DeleteApplicant handles DELETE /api/applicants/:id
// @Summary Delete applicant
// @Tags applicants
// @Produce json
// @Param id path int true "Applicant ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.AppError
// @Router /applicants/{id} [delete]
func (s *Server) DeleteApplicant(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.applicantService.Delete(c.UserContext(), id); err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": validation.MsgApplicantDeleted})
}

// GetApplicantsByProject handles GET /api/applicants/project/:project
// @Summary List applicants of a project
// @Tags applicants
// @Produce json
// @Param project path string true "Project title"
// @Success 200 {array} models.Applicant
// @Router /applicants/project/{project} [get]
func (s *Server) GetApplicantsByProject(c *fiber.Ctx) error {
	project, err := urlParam(c, "project")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid project"))
	}

	applicants, err := s.applicantService.ListByProject(c.UserContext(), project)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(applicants)
}

// SearchApplicants handles GET /api/applicants/search?name=
// @Summary Search applicants by name
// @Description Case-insensitive substring match on first or last name
// @Tags applicants
// @Produce json
// @Param name query string true "Name fragment"
// @Success 200 {array} models.Applicant
// @Router /applicants/search [get]
func (s *Server) SearchApplicants(c *fiber.Ctx) error {
	applicants, err := s.applicantService.SearchByName(c.UserContext(), c.Query("name"))
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(applicants)
}
