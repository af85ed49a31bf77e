package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/events"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/models"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/policy"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/repositories"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/validator"
)

type enrollmentService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewEnrollmentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) EnrollmentService {
	return &enrollmentService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, courseID uint, req *EnrollRequest, actorID string) (*EnrollmentResponse, error) {
	s.logger.Info("Enrolling student", "course_id", courseID, "student_id", req.StudentID, "actor_id", actorID)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	actor, err := actorLookup(ctx, s.repo, actorID)
	if err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if !policy.CanEnrollStudent(actor, req.StudentID, course.TeacherID) {
		return nil, NewPermissionError(actorID, courseID, "enrollment", "create", "cannot enroll this student")
	}

	// The enrollee must exist and hold the student role.
	student, err := s.repo.User().GetByID(ctx, req.StudentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up student: %w", err)
	}
	if student.Role != models.RoleStudent {
		return nil, NewValidationError("student_id", "only students can be enrolled", req.StudentID)
	}

	// Advisory pre-check for a friendly error; the unique index makes
	// the final call under concurrency.
	exists, err := s.repo.Enrollment().Exists(ctx, nil, courseID, req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if exists {
		return nil, ErrAlreadyEnrolled
	}

	enrollment := &models.Enrollment{
		CourseID:  courseID,
		StudentID: req.StudentID,
	}

	if err := s.repo.Enrollment().Create(ctx, nil, enrollment); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	s.logger.Info("Student enrolled successfully", "enrollment_id", enrollment.ID)

	s.publishEvent(ctx, events.EventEnrollmentCreated, map[string]interface{}{
		"enrollment_id": enrollment.ID,
		"course_id":     courseID,
		"student_id":    req.StudentID,
	})

	full, err := s.repo.Enrollment().GetByID(ctx, nil, enrollment.ID)
	if err != nil {
		// The row exists; fall back to what we have.
		return &EnrollmentResponse{Enrollment: enrollment}, nil
	}

	return &EnrollmentResponse{Enrollment: full}, nil
}

func (s *enrollmentService) Unenroll(ctx context.Context, courseID uint, studentID string, actorID string) error {
	s.logger.Info("Unenrolling student", "course_id", courseID, "student_id", studentID, "actor_id", actorID)

	actor, err := actorLookup(ctx, s.repo, actorID)
	if err != nil {
		return err
	}

	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to get course: %w", err)
	}

	if !policy.CanEnrollStudent(actor, studentID, course.TeacherID) {
		return NewPermissionError(actorID, courseID, "enrollment", "delete", "cannot unenroll this student")
	}

	enrollment, err := s.repo.Enrollment().GetByCourseAndStudent(ctx, nil, courseID, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) || errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		return fmt.Errorf("failed to get enrollment: %w", err)
	}

	if err := s.repo.Enrollment().Delete(ctx, nil, enrollment.ID); err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}

	s.logger.Info("Student unenrolled successfully", "enrollment_id", enrollment.ID)

	s.publishEvent(ctx, events.EventEnrollmentDeleted, map[string]interface{}{
		"enrollment_id": enrollment.ID,
		"course_id":     courseID,
		"student_id":    studentID,
	})

	return nil
}

func (s *enrollmentService) ListByCourse(ctx context.Context, courseID uint, filters repositories.EnrollmentFilters, actorID string) (*EnrollmentListResponse, error) {
	actor, err := actorLookup(ctx, s.repo, actorID)
	if err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	// Rosters are visible to the owning teacher and admins only.
	if !policy.CanMutateCourseContent(actor.Role, actor.ID, course.TeacherID) {
		return nil, NewPermissionError(actorID, courseID, "enrollment", "read", "roster restricted to course owner")
	}

	enrollments, total, err := s.repo.Enrollment().ListByCourse(ctx, nil, courseID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	return s.buildListResponse(enrollments, total, filters), nil
}

func (s *enrollmentService) ListByStudent(ctx context.Context, studentID string, filters repositories.EnrollmentFilters, actorID string) (*EnrollmentListResponse, error) {
	actor, err := actorLookup(ctx, s.repo, actorID)
	if err != nil {
		return nil, err
	}

	// Students see their own enrollments; admins see anyone's.
	if actor.ID != studentID && actor.Role != models.RoleAdmin {
		return nil, NewPermissionError(actorID, studentID, "enrollment", "read", "can only view own enrollments")
	}

	enrollments, total, err := s.repo.Enrollment().ListByStudent(ctx, nil, studentID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	return s.buildListResponse(enrollments, total, filters), nil
}

func (s *enrollmentService) IsEnrolled(ctx context.Context, courseID uint, studentID string) (bool, error) {
	return s.repo.Enrollment().Exists(ctx, nil, courseID, studentID)
}

func (s *enrollmentService) buildListResponse(enrollments []*models.Enrollment, total int64, filters repositories.EnrollmentFilters) *EnrollmentListResponse {
	responses := make([]*EnrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		responses = append(responses, &EnrollmentResponse{Enrollment: enrollment})
	}

	return &EnrollmentListResponse{
		Enrollments: responses,
		Total:       total,
		Page:        pageOf(filters.Limit, filters.Offset),
		Size:        sizeOf(filters.Limit),
	}
}

func (s *enrollmentService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}

	event := events.NewEvent(eventType, data)
	if err := s.eventPublisher.Publish(ctx, "lms.enrollments", event); err != nil {
		s.logger.Error("Failed to publish enrollment event", "event_type", eventType, "error", err)
	}
}
