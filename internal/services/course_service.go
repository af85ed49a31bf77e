package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/events"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/models"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/policy"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/repositories"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/validator"
)

type courseService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewCourseService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) CourseService {
	return &courseService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *courseService) Create(ctx context.Context, req *CreateCourseRequest, actorID string) (*CourseResponse, error) {
	s.logger.Info("Creating course", "actor_id", actorID, "title", req.Title)

	// Validate request with business rules
	if errs := s.validator.GetBusinessValidator().ValidateCourseCreate(req); len(errs) > 0 {
		return nil, errs
	}

	actor, err := actorLookup(ctx, s.repo, actorID)
	if err != nil {
		return nil, err
	}

	if !policy.CanCreateCourse(actor.Role) {
		return nil, NewPermissionError(actorID, 0, "course", "create", "insufficient role permissions")
	}

	// Teachers always own their courses; only admins can assign
	// another teacher at creation time.
	teacherID := actorID
	if req.TeacherID != nil && *req.TeacherID != actorID {
		if actor.Role != models.RoleAdmin {
			return nil, NewPermissionError(actorID, 0, "course", "create", "only admins can assign another teacher")
		}
		teacherID = *req.TeacherID
	}

	// The owner must hold the teacher role (admins can own too).
	if err := s.checkOwnerRole(ctx, teacherID); err != nil {
		return nil, err
	}

	course := &models.Course{
		Title:       req.Title,
		Description: req.Description,
		TeacherID:   teacherID,
	}

	if err := s.repo.Course().Create(ctx, nil, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info("Course created successfully", "course_id", course.ID, "teacher_id", teacherID)

	s.publishEvent(ctx, events.EventCourseCreated, map[string]interface{}{
		"course_id":  course.ID,
		"teacher_id": teacherID,
		"title":      course.Title,
	})

	return s.GetByID(ctx, course.ID, actorID)
}

func (s *courseService) GetByID(ctx context.Context, id uint, actorID string) (*CourseResponse, error) {
	actor, err := actorLookup(ctx, s.repo, actorID)
	if err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByIDWithDetails(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	return s.buildResponse(course, actor), nil
}

func (s *courseService) Update(ctx context.Context, id uint, req *UpdateCourseRequest, actorID string) (*CourseResponse, error) {
	s.logger.Info("Updating course", "course_id", id, "actor_id", actorID)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	actor, err := actorLookup(ctx, s.repo, actorID)
	if err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if !policy.CanMutateCourseContent(actor.Role, actor.ID, course.TeacherID) {
		return nil, NewPermissionError(actorID, id, "course", "update", "not owner or insufficient permissions")
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = req.Description
	}

	// Ownership transfer is admin-only and the new owner must hold the
	// teacher role.
	if req.TeacherID != nil && *req.TeacherID != course.TeacherID {
		if actor.Role != models.RoleAdmin {
			return nil, NewPermissionError(actorID, id, "course", "transfer", "only admins can reassign course ownership")
		}
		if err := s.checkOwnerRole(ctx, *req.TeacherID); err != nil {
			return nil, err
		}
		course.TeacherID = *req.TeacherID
	}

	course.UpdatedAt = time.Now()

	if err := s.repo.Course().Update(ctx, nil, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	s.logger.Info("Course updated successfully", "course_id", id)

	return s.GetByID(ctx, id, actorID)
}

func (s *courseService) Delete(ctx context.Context, id uint, actorID string) error {
	s.logger.Info("Deleting course", "course_id", id, "actor_id", actorID)

	actor, err := actorLookup(ctx, s.repo, actorID)
	if err != nil {
		return err
	}

	course, err := s.repo.Course().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to get course: %w", err)
	}

	if !policy.CanMutateCourseContent(actor.Role, actor.ID, course.TeacherID) {
		return NewPermissionError(actorID, id, "course", "delete", "not owner or insufficient permissions")
	}

	if err := s.repo.Course().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	s.logger.Info("Course deleted successfully", "course_id", id)

	s.publishEvent(ctx, events.EventCourseDeleted, map[string]interface{}{
		"course_id":  id,
		"teacher_id": course.TeacherID,
	})

	return nil
}

// ===== LIST OPERATIONS =====

func (s *courseService) List(ctx context.Context, filters repositories.CourseFilters, actorID string) (*CourseListResponse, error) {
	actor, err := actorLookup(ctx, s.repo, actorID)
	if err != nil {
		return nil, err
	}

	courses, total, err := s.repo.Course().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	return s.buildListResponse(courses, total, filters, actor), nil
}

func (s *courseService) GetByTeacher(ctx context.Context, teacherID string, filters repositories.CourseFilters, actorID string) (*CourseListResponse, error) {
	actor, err := actorLookup(ctx, s.repo, actorID)
	if err != nil {
		return nil, err
	}

	courses, total, err := s.repo.Course().GetByTeacher(ctx, nil, teacherID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses by teacher: %w", err)
	}

	return s.buildListResponse(courses, total, filters, actor), nil
}

// ===== STATISTICS =====

func (s *courseService) GetStats(ctx context.Context, id uint, actorID string) (*repositories.CourseStats, error) {
	actor, err := actorLookup(ctx, s.repo, actorID)
	if err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if !policy.CanMutateCourseContent(actor.Role, actor.ID, course.TeacherID) {
		return nil, NewPermissionError(actorID, id, "course", "view_stats", "not owner or insufficient permissions")
	}

	stats, err := s.repo.Course().GetStats(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get course stats: %w", err)
	}

	return stats, nil
}

// ===== PERMISSION CHECKS =====

func (s *courseService) CanEdit(ctx context.Context, courseID uint, actorID string) (bool, error) {
	actor, err := actorLookup(ctx, s.repo, actorID)
	if err != nil {
		return false, err
	}

	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, ErrCourseNotFound
		}
		return false, err
	}

	return policy.CanMutateCourseContent(actor.Role, actor.ID, course.TeacherID), nil
}

// ===== HELPERS =====

// checkOwnerRole verifies the prospective owner exists and holds a
// role that can own courses.
func (s *courseService) checkOwnerRole(ctx context.Context, teacherID string) error {
	owner, err := s.repo.User().GetByID(ctx, teacherID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up course owner: %w", err)
	}

	if owner.Role != models.RoleTeacher && owner.Role != models.RoleAdmin {
		return NewValidationError("teacher_id", "course owner must hold the teacher role", teacherID)
	}

	return nil
}

func (s *courseService) buildResponse(course *models.Course, actor *models.User) *CourseResponse {
	canMutate := policy.CanMutateCourseContent(actor.Role, actor.ID, course.TeacherID)
	return &CourseResponse{
		Course:    course,
		CanEdit:   canMutate,
		CanDelete: canMutate,
	}
}

func (s *courseService) buildListResponse(courses []*models.Course, total int64, filters repositories.CourseFilters, actor *models.User) *CourseListResponse {
	responses := make([]*CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, s.buildResponse(course, actor))
	}

	return &CourseListResponse{
		Courses: responses,
		Total:   total,
		Page:    pageOf(filters.Limit, filters.Offset),
		Size:    sizeOf(filters.Limit),
	}
}

func (s *courseService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}

	event := events.NewEvent(eventType, data)
	if err := s.eventPublisher.Publish(ctx, "lms.courses", event); err != nil {
		s.logger.Error("Failed to publish course event", "event_type", eventType, "error", err)
	}
}
