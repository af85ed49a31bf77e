package services

import (
	"context"

	"github.com/xuri/excelize/v2"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/models"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/repositories"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateCourseRequest = validator.CourseCreateRequest
type UpdateCourseRequest = validator.CourseUpdateRequest
type CreateCourseworkRequest = validator.CourseworkCreateRequest
type UpdateCourseworkRequest = validator.CourseworkUpdateRequest
type EnrollRequest = validator.EnrollRequest
type CreateSubmissionRequest = validator.SubmissionCreateRequest
type UpdateProfileRequest = validator.ProfileUpdateRequest
type UpdateRoleRequest = validator.RoleUpdateRequest

type CourseResponse struct {
	*models.Course
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type CourseListResponse struct {
	Courses []*CourseResponse `json:"courses"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	Size    int               `json:"size"`
}

type CourseworkResponse struct {
	*models.Coursework
	CanEdit bool `json:"can_edit"`
}

type CourseworkListResponse struct {
	Coursework []*CourseworkResponse `json:"coursework"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	Size       int                   `json:"size"`
}

type EnrollmentResponse struct {
	*models.Enrollment
}

type EnrollmentListResponse struct {
	Enrollments []*EnrollmentResponse `json:"enrollments"`
	Total       int64                 `json:"total"`
	Page        int                   `json:"page"`
	Size        int                   `json:"size"`
}

type SubmissionResponse struct {
	*models.Submission
}

type SubmissionListResponse struct {
	Submissions []*SubmissionResponse `json:"submissions"`
	Total       int64                 `json:"total"`
	Page        int                   `json:"page"`
	Size        int                   `json:"size"`
}

type UserResponse struct {
	*models.User
}

type UserListResponse struct {
	Users []*UserResponse `json:"users"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
}

// ===== SERVICE INTERFACES =====

type CourseService interface {
	// Core CRUD operations
	Create(ctx context.Context, req *CreateCourseRequest, actorID string) (*CourseResponse, error)
	GetByID(ctx context.Context, id uint, actorID string) (*CourseResponse, error)
	Update(ctx context.Context, id uint, req *UpdateCourseRequest, actorID string) (*CourseResponse, error)
	Delete(ctx context.Context, id uint, actorID string) error

	// List operations
	List(ctx context.Context, filters repositories.CourseFilters, actorID string) (*CourseListResponse, error)
	GetByTeacher(ctx context.Context, teacherID string, filters repositories.CourseFilters, actorID string) (*CourseListResponse, error)

	// Statistics
	GetStats(ctx context.Context, id uint, actorID string) (*repositories.CourseStats, error)

	// Permission checks
	CanEdit(ctx context.Context, courseID uint, actorID string) (bool, error)
}

type CourseworkService interface {
	Create(ctx context.Context, courseID uint, req *CreateCourseworkRequest, actorID string) (*CourseworkResponse, error)
	GetByID(ctx context.Context, id uint, actorID string) (*CourseworkResponse, error)
	Update(ctx context.Context, id uint, req *UpdateCourseworkRequest, actorID string) (*CourseworkResponse, error)
	Delete(ctx context.Context, id uint, actorID string) error

	ListByCourse(ctx context.Context, courseID uint, filters repositories.CourseworkFilters, actorID string) (*CourseworkListResponse, error)
}

type EnrollmentService interface {
	// Enroll adds a student to a course roster. The storage unique
	// constraint delivers the final word on duplicates.
	Enroll(ctx context.Context, courseID uint, req *EnrollRequest, actorID string) (*EnrollmentResponse, error)
	Unenroll(ctx context.Context, courseID uint, studentID string, actorID string) error

	ListByCourse(ctx context.Context, courseID uint, filters repositories.EnrollmentFilters, actorID string) (*EnrollmentListResponse, error)
	ListByStudent(ctx context.Context, studentID string, filters repositories.EnrollmentFilters, actorID string) (*EnrollmentListResponse, error)

	IsEnrolled(ctx context.Context, courseID uint, studentID string) (bool, error)
}

type SubmissionService interface {
	Submit(ctx context.Context, courseworkID uint, req *CreateSubmissionRequest, actorID string) (*SubmissionResponse, error)
	ListByCoursework(ctx context.Context, courseworkID uint, filters repositories.SubmissionFilters, actorID string) (*SubmissionListResponse, error)
	ListByStudent(ctx context.Context, studentID string, filters repositories.SubmissionFilters, actorID string) (*SubmissionListResponse, error)
}

type UserService interface {
	GetByID(ctx context.Context, id string, actorID string) (*UserResponse, error)
	List(ctx context.Context, filters repositories.UserFilters, actorID string) (*UserListResponse, error)

	UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest, actorID string) (*UserResponse, error)
	UpdateRole(ctx context.Context, id string, req *UpdateRoleRequest, actorID string) (*UserResponse, error)

	// EnsureFromIdentity resolves the local row for an authenticated
	// principal, creating it on first sign-in.
	EnsureFromIdentity(ctx context.Context, identity *models.User) (*models.User, error)
}

type RosterExportService interface {
	// ExportCourseRoster builds an xlsx workbook with the course roster
	ExportCourseRoster(ctx context.Context, courseID uint, actorID string) (*excelize.File, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Course() CourseService
	Coursework() CourseworkService
	Enrollment() EnrollmentService
	Submission() SubmissionService
	User() UserService
	RosterExport() RosterExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
