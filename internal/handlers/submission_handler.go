package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/repositories"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/services"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/utils"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/validator"
)

type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
	validator         *validator.Validator
}

func NewSubmissionHandler(
	submissionService services.SubmissionService,
	validator *validator.Validator,
	logger utils.Logger,
) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
		validator:         validator,
	}
}

// SubmitWork submits work for a coursework item
// @Summary Submit work
// @Description Submits work for a coursework item; resubmitting replaces the prior content
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path uint true "Coursework ID"
// @Param submission body services.CreateSubmissionRequest true "Submission content"
// @Success 201 {object} services.SubmissionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /coursework/{id}/submissions [post]
func (h *SubmissionHandler) SubmitWork(c *gin.Context) {
	courseworkID := h.parseIDParam(c, "id")
	if courseworkID == 0 {
		return
	}

	h.LogRequest(c, "Submitting work", "coursework_id", courseworkID)

	var req services.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err)
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	submission, err := h.submissionService.Submit(c.Request.Context(), courseworkID, &req, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// ListSubmissionsByCoursework lists submissions for a coursework item
// @Summary List submissions
// @Description Lists submissions for a coursework item; course owner or admin only
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path uint true "Coursework ID"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} services.SubmissionListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /coursework/{id}/submissions [get]
func (h *SubmissionHandler) ListSubmissionsByCoursework(c *gin.Context) {
	courseworkID := h.parseIDParam(c, "id")
	if courseworkID == 0 {
		return
	}

	h.LogRequest(c, "Listing submissions", "coursework_id", courseworkID)

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	filters := h.parseSubmissionFilters(c)
	submissions, err := h.submissionService.ListByCoursework(c.Request.Context(), courseworkID, filters, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}

// GetStudentSubmissions lists a student's submissions
// @Summary Get student submissions
// @Description Lists submissions made by a student; self or admin only
// @Tags submissions
// @Accept json
// @Produce json
// @Param student_id path string true "Student ID"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} services.SubmissionListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /students/{student_id}/submissions [get]
func (h *SubmissionHandler) GetStudentSubmissions(c *gin.Context) {
	studentID := ParseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}

	h.LogRequest(c, "Getting student submissions", "student_id", studentID)

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	filters := h.parseSubmissionFilters(c)
	submissions, err := h.submissionService.ListByStudent(c.Request.Context(), studentID, filters, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}

func (h *SubmissionHandler) parseSubmissionFilters(c *gin.Context) repositories.SubmissionFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)

	return repositories.SubmissionFilters{
		Limit:  size,
		Offset: (page - 1) * size,
	}
}
