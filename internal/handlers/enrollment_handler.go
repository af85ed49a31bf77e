package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/repositories"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/services"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/utils"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/validator"
)

type EnrollmentHandler struct {
	BaseHandler
	enrollmentService   services.EnrollmentService
	rosterExportService services.RosterExportService
	validator           *validator.Validator
}

func NewEnrollmentHandler(
	enrollmentService services.EnrollmentService,
	rosterExportService services.RosterExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler:         NewBaseHandler(logger),
		enrollmentService:   enrollmentService,
		rosterExportService: rosterExportService,
		validator:           validator,
	}
}

// EnrollStudent enrolls a student into a course
// @Summary Enroll student
// @Description Enrolls a student into a course; students may self-enroll, teachers/admins may enroll others
// @Tags enrollments
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Param enrollment body services.EnrollRequest true "Enrollment data"
// @Success 201 {object} services.EnrollmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /courses/{id}/enrollments [post]
func (h *EnrollmentHandler) EnrollStudent(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	h.LogRequest(c, "Enrolling student", "course_id", courseID)

	var req services.EnrollRequest
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

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), courseID, &req, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

// UnenrollStudent removes a student from a course
// @Summary Unenroll student
// @Description Removes a student from a course roster
// @Tags enrollments
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Param student_id path string true "Student ID"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/enrollments/{student_id} [delete]
func (h *EnrollmentHandler) UnenrollStudent(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	studentID := ParseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}

	h.LogRequest(c, "Unenrolling student", "course_id", courseID, "student_id", studentID)

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	if err := h.enrollmentService.Unenroll(c.Request.Context(), courseID, studentID, userID.(string)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetCourseRoster lists enrollments for a course
// @Summary Get course roster
// @Description Lists students enrolled in a course; course owner or admin only
// @Tags enrollments
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} services.EnrollmentListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/roster [get]
func (h *EnrollmentHandler) GetCourseRoster(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	h.LogRequest(c, "Getting course roster", "course_id", courseID)

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	filters := h.parseEnrollmentFilters(c)
	roster, err := h.enrollmentService.ListByCourse(c.Request.Context(), courseID, filters, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, roster)
}

// ExportCourseRoster downloads the course roster as an xlsx workbook
// @Summary Export course roster
// @Description Streams the course roster as an xlsx spreadsheet; course owner or admin only
// @Tags enrollments
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Course ID"
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/roster/export [get]
func (h *EnrollmentHandler) ExportCourseRoster(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	h.LogRequest(c, "Exporting course roster", "course_id", courseID)

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	workbook, err := h.rosterExportService.ExportCourseRoster(c.Request.Context(), courseID, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer workbook.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="course_%d_roster.xlsx"`, courseID))

	if err := workbook.Write(c.Writer); err != nil {
		utils.FromContext(c, h.logger).Error("failed to stream roster workbook",
			"course_id", courseID,
			"error", err,
		)
	}
}

// GetStudentEnrollments lists a student's enrollments
// @Summary Get student enrollments
// @Description Lists courses a student is enrolled in; self or admin only
// @Tags enrollments
// @Accept json
// @Produce json
// @Param student_id path string true "Student ID"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} services.EnrollmentListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /students/{student_id}/enrollments [get]
func (h *EnrollmentHandler) GetStudentEnrollments(c *gin.Context) {
	studentID := ParseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}

	h.LogRequest(c, "Getting student enrollments", "student_id", studentID)

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	filters := h.parseEnrollmentFilters(c)
	enrollments, err := h.enrollmentService.ListByStudent(c.Request.Context(), studentID, filters, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollments)
}

func (h *EnrollmentHandler) parseEnrollmentFilters(c *gin.Context) repositories.EnrollmentFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)

	return repositories.EnrollmentFilters{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
}
