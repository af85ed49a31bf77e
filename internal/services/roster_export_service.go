package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/models"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/policy"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/repositories"
)

type rosterExportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewRosterExportService(repo repositories.Repository, logger *slog.Logger) RosterExportService {
	return &rosterExportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportCourseRoster builds an xlsx workbook listing everyone enrolled
// in the course. Restricted to the owning teacher and admins.
func (s *rosterExportService) ExportCourseRoster(ctx context.Context, courseID uint, actorID string) (*excelize.File, error) {
	s.logger.Info("Exporting course roster", "course_id", courseID, "actor_id", actorID)

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

	if !policy.CanMutateCourseContent(actor.Role, actor.ID, course.TeacherID) {
		return nil, NewPermissionError(actorID, courseID, "roster", "export", "roster restricted to course owner")
	}

	// Pull the full roster; exports are not paginated.
	var enrollments []*models.Enrollment
	filters := repositories.EnrollmentFilters{Limit: 100}
	for {
		page, _, err := s.repo.Enrollment().ListByCourse(ctx, nil, courseID, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to list enrollments: %w", err)
		}
		enrollments = append(enrollments, page...)
		if len(page) < filters.Limit {
			break
		}
		filters.Offset += filters.Limit
	}

	f := excelize.NewFile()
	const sheet = "Roster"

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Student ID", "Full Name", "Email", "Enrolled At"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, enrollment := range enrollments {
		fullName, email := "", ""
		if enrollment.Student != nil {
			fullName = enrollment.Student.FullName
			email = enrollment.Student.Email
		}
		values := []interface{}{
			enrollment.StudentID,
			fullName,
			email,
			enrollment.EnrolledAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write roster row: %w", err)
			}
		}
	}

	s.logger.Info("Roster export built", "course_id", courseID, "rows", len(enrollments))

	return f, nil
}
