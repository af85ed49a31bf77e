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

type courseworkService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewCourseworkService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) CourseworkService {
	return &courseworkService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
	}
}

func (s *courseworkService) Create(ctx context.Context, courseID uint, req *CreateCourseworkRequest, actorID string) (*CourseworkResponse, error) {
	s.logger.Info("Creating coursework", "course_id", courseID, "actor_id", actorID, "title", req.Title)

	if errs := s.validator.GetBusinessValidator().ValidateCourseworkCreate(req); len(errs) > 0 {
		return nil, errs
	}

	actor, course, err := s.actorAndCourse(ctx, actorID, courseID)
	if err != nil {
		return nil, err
	}

	// Authorization runs against the course's current owner, so a
	// reassigned course immediately answers for its new teacher.
	if !policy.CanMutateCourseContent(actor.Role, actor.ID, course.TeacherID) {
		return nil, NewPermissionError(actorID, courseID, "coursework", "create", "not course owner or insufficient permissions")
	}

	coursework := &models.Coursework{
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}

	if err := s.repo.Coursework().Create(ctx, nil, coursework); err != nil {
		return nil, fmt.Errorf("failed to create coursework: %w", err)
	}

	s.logger.Info("Coursework created successfully", "coursework_id", coursework.ID)

	s.publishEvent(ctx, events.EventCourseworkCreated, map[string]interface{}{
		"coursework_id": coursework.ID,
		"course_id":     courseID,
		"title":         coursework.Title,
	})

	return s.GetByID(ctx, coursework.ID, actorID)
}

func (s *courseworkService) GetByID(ctx context.Context, id uint, actorID string) (*CourseworkResponse, error) {
	actor, err := actorLookup(ctx, s.repo, actorID)
	if err != nil {
		return nil, err
	}

	coursework, err := s.repo.Coursework().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseworkNotFound
		}
		return nil, fmt.Errorf("failed to get coursework: %w", err)
	}

	ownerID := ""
	if coursework.Course != nil {
		ownerID = coursework.Course.TeacherID
	}

	return &CourseworkResponse{
		Coursework: coursework,
		CanEdit:    policy.CanMutateCourseContent(actor.Role, actor.ID, ownerID),
	}, nil
}

func (s *courseworkService) Update(ctx context.Context, id uint, req *UpdateCourseworkRequest, actorID string) (*CourseworkResponse, error) {
	s.logger.Info("Updating coursework", "coursework_id", id, "actor_id", actorID)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	actor, err := actorLookup(ctx, s.repo, actorID)
	if err != nil {
		return nil, err
	}

	coursework, err := s.repo.Coursework().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseworkNotFound
		}
		return nil, fmt.Errorf("failed to get coursework: %w", err)
	}

	// Re-read the owning course rather than trusting the preloaded
	// association; ownership may have moved since the cache was warmed.
	course, err := s.repo.Course().GetByID(ctx, nil, coursework.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if !policy.CanMutateCourseContent(actor.Role, actor.ID, course.TeacherID) {
		return nil, NewPermissionError(actorID, id, "coursework", "update", "not course owner or insufficient permissions")
	}

	if req.Title != nil {
		coursework.Title = *req.Title
	}
	if req.Description != nil {
		coursework.Description = req.Description
	}
	if req.DueDate != nil {
		coursework.DueDate = req.DueDate
	}
	coursework.UpdatedAt = time.Now()

	if err := s.repo.Coursework().Update(ctx, nil, coursework); err != nil {
		return nil, fmt.Errorf("failed to update coursework: %w", err)
	}

	s.logger.Info("Coursework updated successfully", "coursework_id", id)

	return s.GetByID(ctx, id, actorID)
}

func (s *courseworkService) Delete(ctx context.Context, id uint, actorID string) error {
	s.logger.Info("Deleting coursework", "coursework_id", id, "actor_id", actorID)

	actor, err := actorLookup(ctx, s.repo, actorID)
	if err != nil {
		return err
	}

	coursework, err := s.repo.Coursework().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseworkNotFound
		}
		return fmt.Errorf("failed to get coursework: %w", err)
	}

	course, err := s.repo.Course().GetByID(ctx, nil, coursework.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to get course: %w", err)
	}

	if !policy.CanMutateCourseContent(actor.Role, actor.ID, course.TeacherID) {
		return NewPermissionError(actorID, id, "coursework", "delete", "not course owner or insufficient permissions")
	}

	if err := s.repo.Coursework().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete coursework: %w", err)
	}

	s.logger.Info("Coursework deleted successfully", "coursework_id", id)

	return nil
}

func (s *courseworkService) ListByCourse(ctx context.Context, courseID uint, filters repositories.CourseworkFilters, actorID string) (*CourseworkListResponse, error) {
	actor, course, err := s.actorAndCourse(ctx, actorID, courseID)
	if err != nil {
		return nil, err
	}

	items, total, err := s.repo.Coursework().ListByCourse(ctx, nil, courseID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list coursework: %w", err)
	}

	canEdit := policy.CanMutateCourseContent(actor.Role, actor.ID, course.TeacherID)
	responses := make([]*CourseworkResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, &CourseworkResponse{
			Coursework: item,
			CanEdit:    canEdit,
		})
	}

	return &CourseworkListResponse{
		Coursework: responses,
		Total:      total,
		Page:       pageOf(filters.Limit, filters.Offset),
		Size:       sizeOf(filters.Limit),
	}, nil
}

// actorAndCourse resolves both sides of an authorization decision
func (s *courseworkService) actorAndCourse(ctx context.Context, actorID string, courseID uint) (*models.User, *models.Course, error) {
	actor, err := actorLookup(ctx, s.repo, actorID)
	if err != nil {
		return nil, nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrCourseNotFound
		}
		return nil, nil, fmt.Errorf("failed to get course: %w", err)
	}

	return actor, course, nil
}

func (s *courseworkService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}

	event := events.NewEvent(eventType, data)
	if err := s.eventPublisher.Publish(ctx, "lms.coursework", event); err != nil {
		s.logger.Error("Failed to publish coursework event", "event_type", eventType, "error", err)
	}
}
