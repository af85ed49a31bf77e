package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/services"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/utils"
)

// ErrorResponse is the JSON body returned for any failed request.
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse is the JSON body for operations with no payload.
type SuccessResponse struct {
	Message string `json:"message"`
}

// BaseHandler carries the pieces every handler needs: a logger and the
// shared response/param helpers.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs a handler entry with the request-scoped logger.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).Info(msg, args...)
}

// RespondWithError writes a JSON error body and logs it.
func (h *BaseHandler) RespondWithError(c *gin.Context, status int, message string, err error) {
	details := interface{}(nil)
	if err != nil {
		details = err.Error()
	}
	utils.FromContext(c, h.logger).Warn("request failed",
		"status", status,
		"message", message,
		"error", err,
	)
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}

// parseIDParam parses a numeric path parameter. On failure it writes a
// 400 response and returns 0; callers must bail out on 0.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	idStr := c.Param(name)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
			Details: idStr,
		})
		return 0
	}
	return uint(id)
}

// ParseStringIDParam reads a string path parameter. On empty it writes
// a 400 response and returns ""; callers must bail out on "".
func ParseStringIDParam(c *gin.Context, name string) string {
	value := c.Param(name)
	if value == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing " + name + " parameter",
		})
		return ""
	}
	return value
}

func (h *BaseHandler) parseIntQuery(c *gin.Context, name string, fallback int) int {
	valueStr := c.Query(name)
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

// handleServiceError maps service-layer errors onto HTTP status codes.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs services.ValidationErrors
	var validationErr *services.ValidationError

	switch {
	case services.IsNotFoundError(err):
		h.RespondWithError(c, http.StatusNotFound, "Resource not found", err)
	case services.IsPermissionError(err):
		h.RespondWithError(c, http.StatusForbidden, "Access denied", err)
	case services.IsConflictError(err):
		h.RespondWithError(c, http.StatusConflict, "Conflict", err)
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrs,
		})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErr,
		})
	case errors.Is(err, services.ErrValidationFailed), errors.Is(err, services.ErrUnknownRole):
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err)
	default:
		utils.FromContext(c, h.logger).Error("unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
