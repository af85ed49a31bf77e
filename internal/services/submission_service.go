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

type submissionService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewSubmissionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) SubmissionService {
	return &submissionService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
	}
}

func (s *submissionService) Submit(ctx context.Context, courseworkID uint, req *CreateSubmissionRequest, actorID string) (*SubmissionResponse, error) {
	s.logger.Info("Submitting coursework", "coursework_id", courseworkID, "actor_id", actorID)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	actor, err := actorLookup(ctx, s.repo, actorID)
	if err != nil {
		return nil, err
	}

	if actor.Role != models.RoleStudent {
		return nil, NewPermissionError(actorID, courseworkID, "submission", "create", "only students submit coursework")
	}

	coursework, err := s.repo.Coursework().GetByID(ctx, nil, courseworkID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseworkNotFound
		}
		return nil, fmt.Errorf("failed to get coursework: %w", err)
	}

	// Submissions require an active enrollment in the owning course.
	enrolled, err := s.repo.Enrollment().Exists(ctx, nil, coursework.CourseID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return nil, NewPermissionError(actorID, courseworkID, "submission", "create", "not enrolled in course")
	}

	submission := &models.Submission{
		CourseworkID: courseworkID,
		StudentID:    actorID,
		Content:      req.Content,
		SubmittedAt:  time.Now(),
	}

	if err := s.repo.Submission().Create(ctx, nil, submission); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	s.logger.Info("Submission recorded", "submission_id", submission.ID)

	s.publishEvent(ctx, events.EventSubmissionCreated, map[string]interface{}{
		"submission_id": submission.ID,
		"coursework_id": courseworkID,
		"student_id":    actorID,
	})

	return &SubmissionResponse{Submission: submission}, nil
}

func (s *submissionService) ListByCoursework(ctx context.Context, courseworkID uint, filters repositories.SubmissionFilters, actorID string) (*SubmissionListResponse, error) {
	actor, err := actorLookup(ctx, s.repo, actorID)
	if err != nil {
		return nil, err
	}

	coursework, err := s.repo.Coursework().GetByID(ctx, nil, courseworkID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseworkNotFound
		}
		return nil, fmt.Errorf("failed to get coursework: %w", err)
	}

	course, err := s.repo.Course().GetByID(ctx, nil, coursework.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if !policy.CanMutateCourseContent(actor.Role, actor.ID, course.TeacherID) {
		return nil, NewPermissionError(actorID, courseworkID, "submission", "read", "submissions restricted to course owner")
	}

	submissions, total, err := s.repo.Submission().ListByCoursework(ctx, nil, courseworkID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	return s.buildListResponse(submissions, total, filters), nil
}

func (s *submissionService) ListByStudent(ctx context.Context, studentID string, filters repositories.SubmissionFilters, actorID string) (*SubmissionListResponse, error) {
	actor, err := actorLookup(ctx, s.repo, actorID)
	if err != nil {
		return nil, err
	}

	if actor.ID != studentID && actor.Role != models.RoleAdmin {
		return nil, NewPermissionError(actorID, studentID, "submission", "read", "can only view own submissions")
	}

	submissions, total, err := s.repo.Submission().ListByStudent(ctx, nil, studentID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	return s.buildListResponse(submissions, total, filters), nil
}

func (s *submissionService) buildListResponse(submissions []*models.Submission, total int64, filters repositories.SubmissionFilters) *SubmissionListResponse {
	responses := make([]*SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, &SubmissionResponse{Submission: submission})
	}

	return &SubmissionListResponse{
		Submissions: responses,
		Total:       total,
		Page:        pageOf(filters.Limit, filters.Offset),
		Size:        sizeOf(filters.Limit),
	}
}

func (s *submissionService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}

	event := events.NewEvent(eventType, data)
	if err := s.eventPublisher.Publish(ctx, "lms.submissions", event); err != nil {
		s.logger.Error("Failed to publish submission event", "event_type", eventType, "error", err)
	}
}
