package services

import (
	"errors"
	"fmt"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/validator"
)

// ValidationErrors is re-exported so handlers can unwrap field errors
// without importing the validator package directly.
type ValidationErrors = validator.ValidationErrors
type ValidationError = validator.ValidationError

// Sentinel errors for the service layer. Handlers map these onto HTTP
// statuses; nothing below the handlers knows about HTTP.
var (
	// Not found
	ErrCourseNotFound     = errors.New("course not found")
	ErrCourseworkNotFound = errors.New("coursework not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrUserNotFound       = errors.New("user not found")

	// Conflict
	ErrAlreadyEnrolled  = errors.New("student already enrolled in course")
	ErrEmailTaken       = errors.New("email address already in use")
	ErrAlreadySubmitted = errors.New("submission already exists")

	// Validation
	ErrValidationFailed = errors.New("validation failed")
	ErrUnknownRole      = errors.New("unknown role")

	// Permission
	ErrAccessDenied = errors.New("access denied")
)

// PermissionError carries the who/what/why of a denied operation
type PermissionError struct {
	UserID     string
	ResourceID interface{}
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s (%v): %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func (e *PermissionError) Unwrap() error {
	return ErrAccessDenied
}

// NewPermissionError creates a permission error with context
func NewPermissionError(userID string, resourceID interface{}, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// NewValidationError creates a single-field validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// IsNotFoundError reports whether err is one of the not-found sentinels
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrCourseworkNotFound) ||
		errors.Is(err, ErrEnrollmentNotFound) ||
		errors.Is(err, ErrSubmissionNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsConflictError reports whether err is one of the conflict sentinels
func IsConflictError(err error) bool {
	return errors.Is(err, ErrAlreadyEnrolled) ||
		errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrAlreadySubmitted)
}

// IsPermissionError reports whether err is a denied operation
func IsPermissionError(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}
