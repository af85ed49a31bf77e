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

type CoursePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewCoursePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (c *CoursePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

// Create creates a new course and invalidates list caches
func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, c.cacheManager.Course, fmt.Sprintf("teacher:%s:*", course.TeacherID))
	cache.SafeInvalidatePattern(ctx, c.cacheManager.Course, "list:*")

	return nil
}

// GetByID retrieves a course by ID with caching
func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var course models.Course

	err := c.cacheManager.Course.CacheOrExecute(ctx, cacheKey, &course, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var dbCourse models.Course
		err := c.getDB(tx).WithContext(ctx).
			Preload("Teacher").
			First(&dbCourse, id).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get course: %w", err)
		}
		return &dbCourse, nil
	})

	if err != nil {
		return nil, err
	}

	return &course, nil
}

// GetByIDWithDetails retrieves a course with enrollment and coursework counts
func (c *CoursePostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	cacheKey := fmt.Sprintf("details:%d", id)
	var course models.Course

	err := c.cacheManager.Course.CacheOrExecute(ctx, cacheKey, &course, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		db := c.getDB(tx)

		var dbCourse models.Course
		err := db.WithContext(ctx).
			Preload("Teacher").
			First(&dbCourse, id).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get course details: %w", err)
		}

		if err := c.calculateComputedFields(ctx, db, &dbCourse); err != nil {
			return nil, err
		}
		return &dbCourse, nil
	})

	if err != nil {
		return nil, err
	}

	return &course, nil
}

// Update updates a course row and invalidates its caches. Ownership
// transfer goes through here as well, so both the old and new teacher
// list caches are dropped.
func (c *CoursePostgreSQL) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := c.getDB(tx)

	var current models.Course
	if err := db.WithContext(ctx).Select("id, teacher_id").First(&current, course.ID).Error; err != nil {
		return fmt.Errorf("failed to get course before update: %w", err)
	}

	if err := db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", course.ID).Updates(map[string]interface{}{
		"title":       course.Title,
		"description": course.Description,
		"teacher_id":  course.TeacherID,
		"updated_at":  course.UpdatedAt,
	}).Error; err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	cache.InvalidateCourseCache(ctx, c.cacheManager, course.ID, course.TeacherID)
	if current.TeacherID != course.TeacherID {
		cache.SafeInvalidatePattern(ctx, c.cacheManager.Course, fmt.Sprintf("teacher:%s:*", current.TeacherID))
	}

	return nil
}

// Delete removes a course. Coursework and enrollments go with it via
// the storage-level cascade.
func (c *CoursePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := c.getDB(tx)

	var course models.Course
	if err := db.WithContext(ctx).Select("id, teacher_id").First(&course, id).Error; err != nil {
		return fmt.Errorf("failed to get course before delete: %w", err)
	}

	if err := db.WithContext(ctx).Unscoped().Delete(&models.Course{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	cache.InvalidateCourseCache(ctx, c.cacheManager, id, course.TeacherID)
	cache.SafeInvalidatePattern(ctx, c.cacheManager.Roster, fmt.Sprintf("course:%d:*", id))

	return nil
}

// List retrieves courses with filters and pagination
func (c *CoursePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	db := c.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Course{})

	query = c.applyFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = c.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var courses []*models.Course
	if err := query.Preload("Teacher").Find(&courses).Error; err != nil {
		return nil, 0, err
	}

	for _, course := range courses {
		if err := c.calculateComputedFields(ctx, db, course); err != nil {
			return nil, 0, err
		}
	}

	return courses, total, nil
}

// GetByTeacher retrieves courses owned by a specific teacher
func (c *CoursePostgreSQL) GetByTeacher(ctx context.Context, tx *gorm.DB, teacherID string, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	filters.TeacherID = &teacherID
	return c.List(ctx, tx, filters)
}

// IsOwner reports whether teacherID currently owns the course
func (c *CoursePostgreSQL) IsOwner(ctx context.Context, tx *gorm.DB, courseID uint, teacherID string) (bool, error) {
	db := c.getDB(tx)

	var count int64
	err := db.WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ? AND teacher_id = ?", courseID, teacherID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check course owner: %w", err)
	}

	return count > 0, nil
}

// GetStats returns aggregate counts for a single course with caching
func (c *CoursePostgreSQL) GetStats(ctx context.Context, tx *gorm.DB, id uint) (*repositories.CourseStats, error) {
	cacheKey := fmt.Sprintf("course:%d:stats", id)
	var stats repositories.CourseStats

	err := c.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		db := c.getDB(tx)
		var result repositories.CourseStats

		var enrollments int64
		if err := db.WithContext(ctx).Model(&models.Enrollment{}).Where("course_id = ?", id).Count(&enrollments).Error; err != nil {
			return nil, fmt.Errorf("failed to count enrollments: %w", err)
		}
		result.EnrollmentCount = int(enrollments)

		var coursework int64
		if err := db.WithContext(ctx).Model(&models.Coursework{}).Where("course_id = ?", id).Count(&coursework).Error; err != nil {
			return nil, fmt.Errorf("failed to count coursework: %w", err)
		}
		result.CourseworkCount = int(coursework)

		var submissions int64
		err := db.WithContext(ctx).Model(&models.Submission{}).
			Joins("JOIN coursework ON coursework.id = submissions.coursework_id").
			Where("coursework.course_id = ?", id).
			Count(&submissions).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count submissions: %w", err)
		}
		result.SubmissionCount = int(submissions)

		return &result, nil
	})

	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// GetTeacherStats returns aggregate counts across all courses a teacher owns
func (c *CoursePostgreSQL) GetTeacherStats(ctx context.Context, tx *gorm.DB, teacherID string) (*repositories.TeacherStats, error) {
	cacheKey := fmt.Sprintf("teacher:%s:stats", teacherID)
	var stats repositories.TeacherStats

	err := c.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		db := c.getDB(tx)
		var result repositories.TeacherStats

		var courses int64
		if err := db.WithContext(ctx).Model(&models.Course{}).Where("teacher_id = ?", teacherID).Count(&courses).Error; err != nil {
			return nil, fmt.Errorf("failed to count courses: %w", err)
		}
		result.TotalCourses = int(courses)

		var coursework int64
		err := db.WithContext(ctx).Model(&models.Coursework{}).
			Joins("JOIN courses ON courses.id = coursework.course_id").
			Where("courses.teacher_id = ?", teacherID).
			Count(&coursework).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count coursework: %w", err)
		}
		result.TotalCoursework = int(coursework)

		var enrollments int64
		err = db.WithContext(ctx).Model(&models.Enrollment{}).
			Joins("JOIN courses ON courses.id = enrollments.course_id").
			Where("courses.teacher_id = ?", teacherID).
			Count(&enrollments).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count enrollments: %w", err)
		}
		result.TotalEnrollments = int(enrollments)

		return &result, nil
	})

	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// applyFilters applies course filters to a query
func (c *CoursePostgreSQL) applyFilters(query *gorm.DB, filters repositories.CourseFilters) *gorm.DB {
	if filters.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filters.TeacherID)
	}

	if filters.Query != "" {
		searchQuery := fmt.Sprintf("%%%s%%", filters.Query)
		query = query.Where("title ILIKE ? OR description ILIKE ?", searchQuery, searchQuery)
	}

	return query
}

// calculateComputedFields fills the counts gorm does not map
func (c *CoursePostgreSQL) calculateComputedFields(ctx context.Context, db *gorm.DB, course *models.Course) error {
	var enrollments int64
	if err := db.WithContext(ctx).Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Count(&enrollments).Error; err != nil {
		return fmt.Errorf("failed to count enrollments: %w", err)
	}
	course.EnrollmentCount = int(enrollments)

	var coursework int64
	if err := db.WithContext(ctx).Model(&models.Coursework{}).Where("course_id = ?", course.ID).Count(&coursework).Error; err != nil {
		return fmt.Errorf("failed to count coursework: %w", err)
	}
	course.CourseworkCount = int(coursework)

	return nil
}
