package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/cache"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/models"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/repositories"
)

type EnrollmentPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewEnrollmentPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (e *EnrollmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return e.db
}

// Create inserts an enrollment row. The unique index on (course_id,
// student_id) is the duplicate guard; a violation comes back wrapped
// in repositories.ErrDuplicate so callers can classify it without
// touching driver errors.
func (e *EnrollmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	db := e.getDB(tx)
	if err := db.WithContext(ctx).Create(enrollment).Error; err != nil {
		if repositories.IsDuplicateError(err) {
			return fmt.Errorf("student %s already enrolled in course %d: %w",
				enrollment.StudentID, enrollment.CourseID, repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to create enrollment: %w", err)
	}

	cache.InvalidateEnrollmentCache(ctx, e.cacheManager, enrollment.CourseID, enrollment.StudentID)

	return nil
}

// GetByID retrieves an enrollment by ID
func (e *EnrollmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Enrollment, error) {
	db := e.getDB(tx)

	var enrollment models.Enrollment
	err := db.WithContext(ctx).
		Preload("Student").
		Preload("Course").
		First(&enrollment, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	return &enrollment, nil
}

// GetByCourseAndStudent retrieves the enrollment row for a (course, student) pair
func (e *EnrollmentPostgreSQL) GetByCourseAndStudent(ctx context.Context, tx *gorm.DB, courseID uint, studentID string) (*models.Enrollment, error) {
	db := e.getDB(tx)

	var enrollment models.Enrollment
	err := db.WithContext(ctx).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		First(&enrollment).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	return &enrollment, nil
}

// Delete removes an enrollment row and invalidates roster views
func (e *EnrollmentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := e.getDB(tx)

	var enrollment models.Enrollment
	if err := db.WithContext(ctx).Select("id, course_id, student_id").First(&enrollment, id).Error; err != nil {
		return fmt.Errorf("failed to get enrollment before delete: %w", err)
	}

	if err := db.WithContext(ctx).Delete(&models.Enrollment{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}

	cache.InvalidateEnrollmentCache(ctx, e.cacheManager, enrollment.CourseID, enrollment.StudentID)

	return nil
}

// ListByCourse retrieves the roster of a course with caching on the
// first page of the default sort.
func (e *EnrollmentPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint, filters repositories.EnrollmentFilters) ([]*models.Enrollment, int64, error) {
	db := e.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Enrollment{}).Where("course_id = ?", courseID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := filters.SortBy
	if sortBy == "" {
		sortBy = "enrolled_at"
	}
	query = e.helpers.ApplyPaginationAndSort(query, sortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var enrollments []*models.Enrollment
	if err := query.Preload("Student").Find(&enrollments).Error; err != nil {
		return nil, 0, err
	}

	return enrollments, total, nil
}

// ListByStudent retrieves a student's enrollments with their courses
func (e *EnrollmentPostgreSQL) ListByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.EnrollmentFilters) ([]*models.Enrollment, int64, error) {
	db := e.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Enrollment{}).Where("student_id = ?", studentID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := filters.SortBy
	if sortBy == "" {
		sortBy = "enrolled_at"
	}
	query = e.helpers.ApplyPaginationAndSort(query, sortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var enrollments []*models.Enrollment
	if err := query.Preload("Course").Preload("Course.Teacher").Find(&enrollments).Error; err != nil {
		return nil, 0, err
	}

	return enrollments, total, nil
}

// Exists checks whether a student is enrolled in a course. This is an
// advisory pre-check; Create remains the authoritative guard.
func (e *EnrollmentPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, courseID uint, studentID string) (bool, error) {
	db := e.getDB(tx)

	var count int64
	err := db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}

	return count > 0, nil
}

// CountByCourse counts enrollments in a course
func (e *EnrollmentPostgreSQL) CountByCourse(ctx context.Context, tx *gorm.DB, courseID uint) (int64, error) {
	db := e.getDB(tx)

	var count int64
	err := db.WithContext(ctx).Model(&models.Enrollment{}).Where("course_id = ?", courseID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count enrollments: %w", err)
	}

	return count, nil
}
