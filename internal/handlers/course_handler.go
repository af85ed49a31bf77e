package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/repositories"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/services"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/utils"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/validator"
)

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
	validator     *validator.Validator
}

func NewCourseHandler(
	courseService services.CourseService,
	validator *validator.Validator,
	logger utils.Logger,
) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
		validator:     validator,
	}
}

// CreateCourse creates a new course
// @Summary Create course
// @Description Creates a new course owned by the requesting teacher (admins may set another owner)
// @Tags courses
// @Accept json
// @Produce json
// @Param course body services.CreateCourseRequest true "Course data"
// @Success 201 {object} services.CourseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseRequest
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

	course, err := h.courseService.Create(c.Request.Context(), &req, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

// GetCourse retrieves a course by ID
// @Summary Get course
// @Description Retrieves a course by its ID with enrollment and coursework counts
// @Tags courses
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} services.CourseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting course", "course_id", id)

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	course, err := h.courseService.GetByID(c.Request.Context(), id, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// UpdateCourse updates an existing course
// @Summary Update course
// @Description Updates a course; only the owning teacher or an admin may modify it
// @Tags courses
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Param course body services.UpdateCourseRequest true "Course update data"
// @Success 200 {object} services.CourseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [put]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating course", "course_id", id)

	var req services.UpdateCourseRequest
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

	course, err := h.courseService.Update(c.Request.Context(), id, &req, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// DeleteCourse deletes a course
// @Summary Delete course
// @Description Deletes a course along with its coursework, enrollments and submissions
// @Tags courses
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting course", "course_id", id)

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), id, userID.(string)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListCourses lists courses with filters
// @Summary List courses
// @Description Lists courses with optional text search and pagination
// @Tags courses
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Param q query string false "Search query"
// @Param teacher_id query string false "Owning teacher ID"
// @Success 200 {object} services.CourseListResponse
// @Failure 401 {object} ErrorResponse
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	h.LogRequest(c, "Listing courses")

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	filters := h.parseCourseFilters(c)
	courses, err := h.courseService.List(c.Request.Context(), filters, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// GetCoursesByTeacher lists courses owned by a teacher
// @Summary Get courses by teacher
// @Description Lists courses owned by a specific teacher
// @Tags courses
// @Accept json
// @Produce json
// @Param teacher_id path string true "Teacher ID"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} services.CourseListResponse
// @Failure 400 {object} ErrorResponse
// @Router /courses/teacher/{teacher_id} [get]
func (h *CourseHandler) GetCoursesByTeacher(c *gin.Context) {
	teacherID := ParseStringIDParam(c, "teacher_id")
	if teacherID == "" {
		return
	}

	h.LogRequest(c, "Getting courses by teacher", "teacher_id", teacherID)

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	filters := h.parseCourseFilters(c)
	courses, err := h.courseService.GetByTeacher(c.Request.Context(), teacherID, filters, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// GetCourseStats retrieves course statistics
// @Summary Get course statistics
// @Description Retrieves enrollment, coursework and submission counts for a course
// @Tags courses
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} repositories.CourseStats
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/stats [get]
func (h *CourseHandler) GetCourseStats(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting course stats", "course_id", id)

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	stats, err := h.courseService.GetStats(c.Request.Context(), id, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *CourseHandler) parseCourseFilters(c *gin.Context) repositories.CourseFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)

	filters := repositories.CourseFilters{
		Query:     c.Query("q"),
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if teacherID := c.Query("teacher_id"); teacherID != "" {
		filters.TeacherID = &teacherID
	}

	return filters
}
