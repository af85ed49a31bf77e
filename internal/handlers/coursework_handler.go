package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/repositories"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/services"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/utils"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/validator"
)

type CourseworkHandler struct {
	BaseHandler
	courseworkService services.CourseworkService
	validator         *validator.Validator
}

func NewCourseworkHandler(
	courseworkService services.CourseworkService,
	validator *validator.Validator,
	logger utils.Logger,
) *CourseworkHandler {
	return &CourseworkHandler{
		BaseHandler:       NewBaseHandler(logger),
		courseworkService: courseworkService,
		validator:         validator,
	}
}

// CreateCoursework creates a coursework item under a course
// @Summary Create coursework
// @Description Creates an assignment or material under a course; owner or admin only
// @Tags coursework
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Param coursework body services.CreateCourseworkRequest true "Coursework data"
// @Success 201 {object} services.CourseworkResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/coursework [post]
func (h *CourseworkHandler) CreateCoursework(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	h.LogRequest(c, "Creating coursework", "course_id", courseID)

	var req services.CreateCourseworkRequest
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

	coursework, err := h.courseworkService.Create(c.Request.Context(), courseID, &req, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, coursework)
}

// GetCoursework retrieves a coursework item by ID
// @Summary Get coursework
// @Description Retrieves a coursework item by its ID
// @Tags coursework
// @Accept json
// @Produce json
// @Param id path uint true "Coursework ID"
// @Success 200 {object} services.CourseworkResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /coursework/{id} [get]
func (h *CourseworkHandler) GetCoursework(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting coursework", "coursework_id", id)

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	coursework, err := h.courseworkService.GetByID(c.Request.Context(), id, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, coursework)
}

// UpdateCoursework updates a coursework item
// @Summary Update coursework
// @Description Updates a coursework item; course owner or admin only
// @Tags coursework
// @Accept json
// @Produce json
// @Param id path uint true "Coursework ID"
// @Param coursework body services.UpdateCourseworkRequest true "Coursework update data"
// @Success 200 {object} services.CourseworkResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /coursework/{id} [put]
func (h *CourseworkHandler) UpdateCoursework(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating coursework", "coursework_id", id)

	var req services.UpdateCourseworkRequest
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

	coursework, err := h.courseworkService.Update(c.Request.Context(), id, &req, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, coursework)
}

// DeleteCoursework deletes a coursework item
// @Summary Delete coursework
// @Description Deletes a coursework item and its submissions; course owner or admin only
// @Tags coursework
// @Accept json
// @Produce json
// @Param id path uint true "Coursework ID"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /coursework/{id} [delete]
func (h *CourseworkHandler) DeleteCoursework(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting coursework", "coursework_id", id)

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	if err := h.courseworkService.Delete(c.Request.Context(), id, userID.(string)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListCourseworkByCourse lists coursework under a course
// @Summary List coursework
// @Description Lists coursework items for a course with pagination
// @Tags coursework
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Param due_before query string false "Only items due before this RFC3339 timestamp"
// @Success 200 {object} services.CourseworkListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/coursework [get]
func (h *CourseworkHandler) ListCourseworkByCourse(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	h.LogRequest(c, "Listing coursework", "course_id", courseID)

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	filters := h.parseCourseworkFilters(c)
	coursework, err := h.courseworkService.ListByCourse(c.Request.Context(), courseID, filters, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, coursework)
}

func (h *CourseworkHandler) parseCourseworkFilters(c *gin.Context) repositories.CourseworkFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)

	filters := repositories.CourseworkFilters{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if dueBeforeStr := c.Query("due_before"); dueBeforeStr != "" {
		if dueBefore, err := time.Parse(time.RFC3339, dueBeforeStr); err == nil {
			filters.DueBefore = &dueBefore
		}
	}

	return filters
}
