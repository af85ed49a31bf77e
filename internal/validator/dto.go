package validator

import (
	"time"

	"gorm.io/datatypes"
)

// CourseCreateRequest represents the request structure for creating courses
type CourseCreateRequest struct {
	Title       string  `json:"title" validate:"required,course_title"`
	Description *string `json:"description" validate:"omitempty,course_description"`
	// TeacherID is only honored for admin callers; teachers always
	// create courses they own themselves.
	TeacherID *string `json:"teacher_id" validate:"omitempty,max=255"`
}

// CourseUpdateRequest represents the request structure for updating courses
type CourseUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,course_title"`
	Description *string `json:"description" validate:"omitempty,course_description"`
	TeacherID   *string `json:"teacher_id" validate:"omitempty,max=255"`
}

// CourseworkCreateRequest represents the request structure for creating coursework
type CourseworkCreateRequest struct {
	Title       string     `json:"title" validate:"required,course_title"`
	Description *string    `json:"description" validate:"omitempty,course_description"`
	DueDate     *time.Time `json:"due_date" validate:"omitempty,future_date"`
}

// CourseworkUpdateRequest represents the request structure for updating coursework
type CourseworkUpdateRequest struct {
	Title       *string    `json:"title" validate:"omitempty,course_title"`
	Description *string    `json:"description" validate:"omitempty,course_description"`
	DueDate     *time.Time `json:"due_date"`
}

// EnrollRequest represents the request structure for enrolling a student
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required,max=255"`
}

// SubmissionCreateRequest represents the request structure for submitting coursework
type SubmissionCreateRequest struct {
	Content datatypes.JSON `json:"content" validate:"required"`
}

// ProfileUpdateRequest represents the self-service profile update
type ProfileUpdateRequest struct {
	FullName  *string `json:"full_name" validate:"omitempty,min=1,max=255"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url,max=500"`
}

// RoleUpdateRequest represents an admin changing a user's role
type RoleUpdateRequest struct {
	Role string `json:"role" validate:"required,user_role"`
}
