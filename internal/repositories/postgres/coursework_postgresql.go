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

type CourseworkPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewCourseworkPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.CourseworkRepository {
	return &CourseworkPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (cw *CourseworkPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return cw.db
}

// Create creates a coursework item and invalidates the course views
func (cw *CourseworkPostgreSQL) Create(ctx context.Context, tx *gorm.DB, coursework *models.Coursework) error {
	db := cw.getDB(tx)
	if err := db.WithContext(ctx).Create(coursework).Error; err != nil {
		return fmt.Errorf("failed to create coursework: %w", err)
	}

	cw.invalidateCourseViews(ctx, coursework.CourseID, coursework.ID)

	return nil
}

// GetByID retrieves a coursework item by ID with caching
func (cw *CourseworkPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Coursework, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var coursework models.Coursework

	err := cw.cacheManager.Coursework.CacheOrExecute(ctx, cacheKey, &coursework, cache.CourseworkCacheConfig.TTL, func() (interface{}, error) {
		var dbCoursework models.Coursework
		err := cw.getDB(tx).WithContext(ctx).
			Preload("Course").
			First(&dbCoursework, id).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get coursework: %w", err)
		}
		return &dbCoursework, nil
	})

	if err != nil {
		return nil, err
	}

	return &coursework, nil
}

// Update updates a coursework item and invalidates its caches
func (cw *CourseworkPostgreSQL) Update(ctx context.Context, tx *gorm.DB, coursework *models.Coursework) error {
	db := cw.getDB(tx)

	if err := db.WithContext(ctx).Model(&models.Coursework{}).Where("id = ?", coursework.ID).Updates(map[string]interface{}{
		"title":       coursework.Title,
		"description": coursework.Description,
		"due_date":    coursework.DueDate,
		"updated_at":  coursework.UpdatedAt,
	}).Error; err != nil {
		return fmt.Errorf("failed to update coursework: %w", err)
	}

	cw.invalidateCourseViews(ctx, coursework.CourseID, coursework.ID)

	return nil
}

// Delete removes a coursework item. Its submissions go with it via the
// storage-level cascade.
func (cw *CourseworkPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := cw.getDB(tx)

	var coursework models.Coursework
	if err := db.WithContext(ctx).Select("id, course_id").First(&coursework, id).Error; err != nil {
		return fmt.Errorf("failed to get coursework before delete: %w", err)
	}

	if err := db.WithContext(ctx).Unscoped().Delete(&models.Coursework{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete coursework: %w", err)
	}

	cw.invalidateCourseViews(ctx, coursework.CourseID, id)

	return nil
}

// ListByCourse retrieves coursework for a course with filters and pagination
func (cw *CourseworkPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint, filters repositories.CourseworkFilters) ([]*models.Coursework, int64, error) {
	db := cw.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Coursework{}).Where("course_id = ?", courseID)

	if filters.DueBefore != nil {
		query = query.Where("due_date IS NOT NULL AND due_date < ?", *filters.DueBefore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = cw.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var items []*models.Coursework
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// CountByCourse counts coursework items for a course
func (cw *CourseworkPostgreSQL) CountByCourse(ctx context.Context, tx *gorm.DB, courseID uint) (int64, error) {
	db := cw.getDB(tx)

	var count int64
	err := db.WithContext(ctx).Model(&models.Coursework{}).Where("course_id = ?", courseID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count coursework: %w", err)
	}

	return count, nil
}

func (cw *CourseworkPostgreSQL) invalidateCourseViews(ctx context.Context, courseID, courseworkID uint) {
	cache.SafeDelete(ctx, cw.cacheManager.Coursework, fmt.Sprintf("id:%d", courseworkID))
	cache.SafeInvalidatePattern(ctx, cw.cacheManager.Coursework, fmt.Sprintf("course:%d:*", courseID))
	cache.SafeDelete(ctx, cw.cacheManager.Course, fmt.Sprintf("details:%d", courseID))
	cache.SafeInvalidatePattern(ctx, cw.cacheManager.Stats, fmt.Sprintf("course:%d:*", courseID))
}
