package repositories

import (
	"context"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/models"
	"gorm.io/gorm"
)

// EnrollmentRepository is the enrollment ledger. The (course_id,
// student_id) unique index in storage is the authoritative duplicate
// guard; Create surfaces a violation as ErrDuplicate.
type EnrollmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Enrollment, error)
	GetByCourseAndStudent(ctx context.Context, tx *gorm.DB, courseID uint, studentID string) (*models.Enrollment, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint, filters EnrollmentFilters) ([]*models.Enrollment, int64, error)
	ListByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters EnrollmentFilters) ([]*models.Enrollment, int64, error)

	Exists(ctx context.Context, tx *gorm.DB, courseID uint, studentID string) (bool, error)
	CountByCourse(ctx context.Context, tx *gorm.DB, courseID uint) (int64, error)
}

// SubmissionRepository persists coursework submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error)
	ListByCoursework(ctx context.Context, tx *gorm.DB, courseworkID uint, filters SubmissionFilters) ([]*models.Submission, int64, error)
	ListByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters SubmissionFilters) ([]*models.Submission, int64, error)
}
