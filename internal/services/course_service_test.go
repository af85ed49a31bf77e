package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/events"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/models"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/validator"
)

func newCourseFixture(t *testing.T) (*fakeRepository, *events.MockEventPublisher, CourseService) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher(logger)
	repo := newFakeRepository()

	repo.user.users["teacher-1"] = &models.User{ID: "teacher-1", FullName: "Grace Hopper", Email: "grace@example.com", Role: models.RoleTeacher}
	repo.user.users["teacher-2"] = &models.User{ID: "teacher-2", FullName: "Alan Kay", Email: "alan@example.com", Role: models.RoleTeacher}
	repo.user.users["student-1"] = &models.User{ID: "student-1", FullName: "Ada Lovelace", Email: "ada@example.com", Role: models.RoleStudent}
	repo.user.users["admin-1"] = &models.User{ID: "admin-1", FullName: "Root Admin", Email: "admin@example.com", Role: models.RoleAdmin}

	service := NewCourseService(repo, nil, logger, validator.New(), publisher)
	return repo, publisher, service
}

func strPtr(s string) *string { return &s }

func TestCourseService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Teacher_Creates_Own_Course", func(t *testing.T) {
		_, publisher, service := newCourseFixture(t)

		resp, err := service.Create(ctx, &CreateCourseRequest{Title: "Compilers"}, "teacher-1")
		if err != nil {
			t.Fatalf("Failed to create course: %v", err)
		}
		if resp.Course.TeacherID != "teacher-1" {
			t.Errorf("Expected ownership to default to the actor, got %q", resp.Course.TeacherID)
		}
		if !resp.CanEdit || !resp.CanDelete {
			t.Error("Owner should be able to edit and delete the new course")
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventCourseCreated {
			t.Errorf("Expected one %q event, got %+v", events.EventCourseCreated, published)
		}
	})

	t.Run("Student_Denied", func(t *testing.T) {
		_, _, service := newCourseFixture(t)

		_, err := service.Create(ctx, &CreateCourseRequest{Title: "Compilers"}, "student-1")
		if !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
	})

	t.Run("Teacher_Cannot_Assign_Another_Owner", func(t *testing.T) {
		_, _, service := newCourseFixture(t)

		_, err := service.Create(ctx, &CreateCourseRequest{Title: "Compilers", TeacherID: strPtr("teacher-2")}, "teacher-1")
		if !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
	})

	t.Run("Admin_Assigns_Owner", func(t *testing.T) {
		_, _, service := newCourseFixture(t)

		resp, err := service.Create(ctx, &CreateCourseRequest{Title: "Compilers", TeacherID: strPtr("teacher-2")}, "admin-1")
		if err != nil {
			t.Fatalf("Admin should assign ownership: %v", err)
		}
		if resp.Course.TeacherID != "teacher-2" {
			t.Errorf("Expected owner teacher-2, got %q", resp.Course.TeacherID)
		}
	})

	t.Run("Owner_Must_Hold_Teacher_Role", func(t *testing.T) {
		_, _, service := newCourseFixture(t)

		_, err := service.Create(ctx, &CreateCourseRequest{Title: "Compilers", TeacherID: strPtr("student-1")}, "admin-1")
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("Expected validation error for student owner, got %v", err)
		}
	})

	t.Run("Blank_Title_Rejected", func(t *testing.T) {
		_, _, service := newCourseFixture(t)

		_, err := service.Create(ctx, &CreateCourseRequest{Title: "   "}, "teacher-1")
		if err == nil {
			t.Fatal("Expected validation failure for blank title")
		}
	})
}

func TestCourseService_OwnershipTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("Teacher_Cannot_Transfer", func(t *testing.T) {
		_, _, service := newCourseFixture(t)

		created, err := service.Create(ctx, &CreateCourseRequest{Title: "Compilers"}, "teacher-1")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		_, err = service.Update(ctx, created.Course.ID, &UpdateCourseRequest{TeacherID: strPtr("teacher-2")}, "teacher-1")
		if !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
	})

	t.Run("Admin_Transfer_Flips_Edit_Rights", func(t *testing.T) {
		_, _, service := newCourseFixture(t)

		created, err := service.Create(ctx, &CreateCourseRequest{Title: "Compilers"}, "teacher-1")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		updated, err := service.Update(ctx, created.Course.ID, &UpdateCourseRequest{TeacherID: strPtr("teacher-2")}, "admin-1")
		if err != nil {
			t.Fatalf("Admin transfer failed: %v", err)
		}
		if updated.Course.TeacherID != "teacher-2" {
			t.Errorf("Expected owner teacher-2, got %q", updated.Course.TeacherID)
		}

		// Authorization is evaluated against current ownership, so the
		// old owner loses edit rights immediately.
		canEdit, err := service.CanEdit(ctx, created.Course.ID, "teacher-1")
		if err != nil {
			t.Fatalf("CanEdit failed: %v", err)
		}
		if canEdit {
			t.Error("Previous owner should no longer be able to edit")
		}

		canEdit, err = service.CanEdit(ctx, created.Course.ID, "teacher-2")
		if err != nil {
			t.Fatalf("CanEdit failed: %v", err)
		}
		if !canEdit {
			t.Error("New owner should be able to edit")
		}
	})

	t.Run("Transfer_To_Student_Rejected", func(t *testing.T) {
		_, _, service := newCourseFixture(t)

		created, err := service.Create(ctx, &CreateCourseRequest{Title: "Compilers"}, "teacher-1")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		_, err = service.Update(ctx, created.Course.ID, &UpdateCourseRequest{TeacherID: strPtr("student-1")}, "admin-1")
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("Expected validation error, got %v", err)
		}
	})
}

func TestCourseService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner_Deletes_And_Publishes", func(t *testing.T) {
		repo, publisher, service := newCourseFixture(t)

		created, err := service.Create(ctx, &CreateCourseRequest{Title: "Compilers"}, "teacher-1")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		courseID := created.Course.ID
		repo.coursework.coursework[1] = &models.Coursework{ID: 1, CourseID: courseID, Title: "Parser lab"}
		repo.enrollment.enrollments[1] = &models.Enrollment{ID: 1, CourseID: courseID, StudentID: "student-1"}
		publisher.ClearEvents()

		if err := service.Delete(ctx, courseID, "teacher-1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		if _, err := service.GetByID(ctx, courseID, "teacher-1"); !errors.Is(err, ErrCourseNotFound) {
			t.Errorf("Expected ErrCourseNotFound after delete, got %v", err)
		}
		if len(repo.coursework.coursework) != 0 {
			t.Errorf("Coursework should be deleted with the course, %d left", len(repo.coursework.coursework))
		}
		if len(repo.enrollment.enrollments) != 0 {
			t.Errorf("Enrollments should be deleted with the course, %d left", len(repo.enrollment.enrollments))
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventCourseDeleted {
			t.Errorf("Expected one %q event, got %+v", events.EventCourseDeleted, published)
		}
	})

	t.Run("NonOwner_Denied", func(t *testing.T) {
		_, _, service := newCourseFixture(t)

		created, err := service.Create(ctx, &CreateCourseRequest{Title: "Compilers"}, "teacher-1")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if err := service.Delete(ctx, created.Course.ID, "teacher-2"); !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
	})
}

func TestCourseService_Stats(t *testing.T) {
	ctx := context.Background()

	_, _, service := newCourseFixture(t)

	created, err := service.Create(ctx, &CreateCourseRequest{Title: "Compilers"}, "teacher-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := service.GetStats(ctx, created.Course.ID, "teacher-1"); err != nil {
		t.Errorf("Owner should see stats: %v", err)
	}

	if _, err := service.GetStats(ctx, created.Course.ID, "teacher-2"); !IsPermissionError(err) {
		t.Errorf("Non-owner should be denied stats, got %v", err)
	}
}
