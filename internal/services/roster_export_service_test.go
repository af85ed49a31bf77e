package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/models"
)

func TestRosterExportService_ExportCourseRoster(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	repo := newFakeRepository()
	repo.user.users["teacher-1"] = &models.User{ID: "teacher-1", FullName: "Grace Hopper", Email: "grace@example.com", Role: models.RoleTeacher}
	repo.user.users["teacher-2"] = &models.User{ID: "teacher-2", FullName: "Alan Kay", Email: "alan@example.com", Role: models.RoleTeacher}
	repo.course.courses[1] = &models.Course{ID: 1, Title: "Distributed Systems", TeacherID: "teacher-1"}

	student := &models.User{ID: "student-1", FullName: "Ada Lovelace", Email: "ada@example.com", Role: models.RoleStudent}
	repo.user.users["student-1"] = student
	repo.enrollment.enrollments[1] = &models.Enrollment{
		ID:         1,
		CourseID:   1,
		StudentID:  "student-1",
		EnrolledAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Student:    student,
	}
	repo.enrollment.nextID = 1

	service := NewRosterExportService(repo, logger)

	t.Run("Builds_Workbook", func(t *testing.T) {
		f, err := service.ExportCourseRoster(ctx, 1, "teacher-1")
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}
		defer f.Close()

		header, err := f.GetCellValue("Roster", "A1")
		if err != nil {
			t.Fatalf("Failed to read header: %v", err)
		}
		if header != "Student ID" {
			t.Errorf("Expected 'Student ID' header, got %q", header)
		}

		id, _ := f.GetCellValue("Roster", "A2")
		name, _ := f.GetCellValue("Roster", "B2")
		email, _ := f.GetCellValue("Roster", "C2")
		enrolledAt, _ := f.GetCellValue("Roster", "D2")

		if id != "student-1" || name != "Ada Lovelace" || email != "ada@example.com" {
			t.Errorf("Unexpected roster row: %q %q %q", id, name, email)
		}
		if enrolledAt != "2026-03-14 09:30:00" {
			t.Errorf("Unexpected enrolled-at format: %q", enrolledAt)
		}
	})

	t.Run("NonOwner_Denied", func(t *testing.T) {
		if _, err := service.ExportCourseRoster(ctx, 1, "teacher-2"); !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
	})
}
