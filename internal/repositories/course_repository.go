package repositories

import (
	"context"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/models"
	"gorm.io/gorm"
)

// CourseRepository persists courses. Deleting a course cascades to its
// coursework and enrollments at the storage layer.
type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	Update(ctx context.Context, tx *gorm.DB, course *models.Course) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters CourseFilters) ([]*models.Course, int64, error)
	GetByTeacher(ctx context.Context, tx *gorm.DB, teacherID string, filters CourseFilters) ([]*models.Course, int64, error)

	// IsOwner reports whether teacherID currently owns the course.
	IsOwner(ctx context.Context, tx *gorm.DB, courseID uint, teacherID string) (bool, error)
	GetStats(ctx context.Context, tx *gorm.DB, id uint) (*CourseStats, error)
	GetTeacherStats(ctx context.Context, tx *gorm.DB, teacherID string) (*TeacherStats, error)
}

// CourseworkRepository persists coursework items of a course.
type CourseworkRepository interface {
	Create(ctx context.Context, tx *gorm.DB, coursework *models.Coursework) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Coursework, error)
	Update(ctx context.Context, tx *gorm.DB, coursework *models.Coursework) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint, filters CourseworkFilters) ([]*models.Coursework, int64, error)
	CountByCourse(ctx context.Context, tx *gorm.DB, courseID uint) (int64, error)
}
