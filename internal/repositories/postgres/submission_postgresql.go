package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/models"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/repositories"
)

type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db}
}

func (s *SubmissionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

// applyPagination clamps limit/offset. Submissions always sort by
// submitted_at descending.
func (s *SubmissionPostgreSQL) applyPagination(query *gorm.DB, filters repositories.SubmissionFilters) *gorm.DB {
	limit := filters.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	query = query.Limit(limit)

	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	return query
}

// Create inserts a submission. Resubmission is an upsert on the
// (coursework_id, student_id) unique index: the content and timestamp
// are replaced, the row identity survives.
func (s *SubmissionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	db := s.getDB(tx)

	err := db.WithContext(ctx).
		Where("coursework_id = ? AND student_id = ?", submission.CourseworkID, submission.StudentID).
		Assign(map[string]interface{}{
			"content":      submission.Content,
			"submitted_at": submission.SubmittedAt,
		}).
		FirstOrCreate(submission).Error
	if err != nil {
		if repositories.IsDuplicateError(err) {
			return fmt.Errorf("submission already exists for coursework %d: %w",
				submission.CourseworkID, repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to create submission: %w", err)
	}

	return nil
}

// GetByID retrieves a submission by ID
func (s *SubmissionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	db := s.getDB(tx)

	var submission models.Submission
	err := db.WithContext(ctx).
		Preload("Student").
		Preload("Coursework").
		First(&submission, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return &submission, nil
}

// ListByCoursework retrieves submissions for a coursework item
func (s *SubmissionPostgreSQL) ListByCoursework(ctx context.Context, tx *gorm.DB, courseworkID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	db := s.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Submission{}).Where("coursework_id = ?", courseworkID)

	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = s.applyPagination(query.Order("submitted_at DESC"), filters)

	var submissions []*models.Submission
	if err := query.Preload("Student").Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

// ListByStudent retrieves a student's submissions
func (s *SubmissionPostgreSQL) ListByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	db := s.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Submission{}).Where("student_id = ?", studentID)

	if filters.CourseworkID != nil {
		query = query.Where("coursework_id = ?", *filters.CourseworkID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = s.applyPagination(query.Order("submitted_at DESC"), filters)

	var submissions []*models.Submission
	if err := query.Preload("Coursework").Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}
