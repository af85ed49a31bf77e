package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"gorm.io/datatypes"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/events"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/models"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/repositories"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/validator"
)

func newSubmissionFixture(t *testing.T) (*fakeRepository, *events.MockEventPublisher, SubmissionService) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher(logger)
	repo := newFakeRepository()

	repo.user.users["teacher-1"] = &models.User{ID: "teacher-1", FullName: "Grace Hopper", Email: "grace@example.com", Role: models.RoleTeacher}
	repo.user.users["teacher-2"] = &models.User{ID: "teacher-2", FullName: "Alan Kay", Email: "alan@example.com", Role: models.RoleTeacher}
	repo.user.users["student-1"] = &models.User{ID: "student-1", FullName: "Ada Lovelace", Email: "ada@example.com", Role: models.RoleStudent}
	repo.user.users["admin-1"] = &models.User{ID: "admin-1", FullName: "Root Admin", Email: "admin@example.com", Role: models.RoleAdmin}

	repo.course.courses[1] = &models.Course{ID: 1, Title: "Distributed Systems", TeacherID: "teacher-1"}
	repo.coursework.coursework[10] = &models.Coursework{ID: 10, CourseID: 1, Title: "Lab 1"}
	repo.coursework.nextID = 10

	repo.enrollment.enrollments[1] = &models.Enrollment{ID: 1, CourseID: 1, StudentID: "student-1"}
	repo.enrollment.nextID = 1

	service := NewSubmissionService(repo, nil, logger, validator.New(), publisher)
	return repo, publisher, service
}

func TestSubmissionService_Submit(t *testing.T) {
	ctx := context.Background()
	content := datatypes.JSON([]byte(`{"answer": "consensus requires a quorum"}`))

	t.Run("Enrolled_Student_Submits", func(t *testing.T) {
		_, publisher, service := newSubmissionFixture(t)

		resp, err := service.Submit(ctx, 10, &CreateSubmissionRequest{Content: content}, "student-1")
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if resp.Submission.CourseworkID != 10 || resp.Submission.StudentID != "student-1" {
			t.Errorf("Unexpected submission row: %+v", resp.Submission)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventSubmissionCreated {
			t.Errorf("Expected one %q event, got %+v", events.EventSubmissionCreated, published)
		}
	})

	t.Run("Resubmission_Replaces_Content", func(t *testing.T) {
		repo, _, service := newSubmissionFixture(t)

		first, err := service.Submit(ctx, 10, &CreateSubmissionRequest{Content: content}, "student-1")
		if err != nil {
			t.Fatalf("First submit failed: %v", err)
		}

		revised := datatypes.JSON([]byte(`{"answer": "revised"}`))
		second, err := service.Submit(ctx, 10, &CreateSubmissionRequest{Content: revised}, "student-1")
		if err != nil {
			t.Fatalf("Resubmit failed: %v", err)
		}

		if second.Submission.ID != first.Submission.ID {
			t.Errorf("Resubmission should reuse the row, got %d and %d", first.Submission.ID, second.Submission.ID)
		}

		_, total, err := repo.submission.ListByCoursework(ctx, nil, 10, repositories.SubmissionFilters{})
		if err != nil {
			t.Fatalf("ListByCoursework failed: %v", err)
		}
		if total != 1 {
			t.Errorf("Expected a single stored submission, got %d", total)
		}
		if string(second.Submission.Content) != string(revised) {
			t.Errorf("Expected replaced content, got %s", second.Submission.Content)
		}
	})

	t.Run("Unenrolled_Student_Denied", func(t *testing.T) {
		repo, _, service := newSubmissionFixture(t)
		repo.user.users["student-2"] = &models.User{ID: "student-2", FullName: "Joan Clarke", Email: "joan@example.com", Role: models.RoleStudent}

		_, err := service.Submit(ctx, 10, &CreateSubmissionRequest{Content: content}, "student-2")
		if !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
	})

	t.Run("Teacher_Cannot_Submit", func(t *testing.T) {
		_, _, service := newSubmissionFixture(t)

		_, err := service.Submit(ctx, 10, &CreateSubmissionRequest{Content: content}, "teacher-1")
		if !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
	})

	t.Run("Unknown_Coursework", func(t *testing.T) {
		_, _, service := newSubmissionFixture(t)

		_, err := service.Submit(ctx, 99, &CreateSubmissionRequest{Content: content}, "student-1")
		if !errors.Is(err, ErrCourseworkNotFound) {
			t.Fatalf("Expected ErrCourseworkNotFound, got %v", err)
		}
	})
}

func TestSubmissionService_ListByCoursework(t *testing.T) {
	ctx := context.Background()
	content := datatypes.JSON([]byte(`{"answer": 42}`))

	t.Run("Restricted_To_Course_Owner", func(t *testing.T) {
		_, _, service := newSubmissionFixture(t)

		if _, err := service.Submit(ctx, 10, &CreateSubmissionRequest{Content: content}, "student-1"); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}

		resp, err := service.ListByCoursework(ctx, 10, repositories.SubmissionFilters{}, "teacher-1")
		if err != nil {
			t.Fatalf("Owner should list submissions: %v", err)
		}
		if resp.Total != 1 {
			t.Errorf("Expected 1 submission, got %d", resp.Total)
		}

		if _, err := service.ListByCoursework(ctx, 10, repositories.SubmissionFilters{}, "teacher-2"); !IsPermissionError(err) {
			t.Errorf("Non-owner should be denied, got %v", err)
		}
	})

	t.Run("Ownership_Transfer_Moves_Grading_Access", func(t *testing.T) {
		repo, _, service := newSubmissionFixture(t)

		if _, err := service.Submit(ctx, 10, &CreateSubmissionRequest{Content: content}, "student-1"); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}

		// Reassign the owning course; access checks follow the current
		// owner, not whoever owned it at submission time.
		repo.course.courses[1].TeacherID = "teacher-2"

		if _, err := service.ListByCoursework(ctx, 10, repositories.SubmissionFilters{}, "teacher-1"); !IsPermissionError(err) {
			t.Errorf("Previous owner should be denied after transfer, got %v", err)
		}
		if _, err := service.ListByCoursework(ctx, 10, repositories.SubmissionFilters{}, "teacher-2"); err != nil {
			t.Errorf("New owner should list submissions: %v", err)
		}
	})
}

func TestSubmissionService_ListByStudent(t *testing.T) {
	ctx := context.Background()
	content := datatypes.JSON([]byte(`{"answer": 42}`))

	_, _, service := newSubmissionFixture(t)

	if _, err := service.Submit(ctx, 10, &CreateSubmissionRequest{Content: content}, "student-1"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if _, err := service.ListByStudent(ctx, "student-1", repositories.SubmissionFilters{}, "student-1"); err != nil {
		t.Errorf("Student should see own submissions: %v", err)
	}

	if _, err := service.ListByStudent(ctx, "student-1", repositories.SubmissionFilters{}, "teacher-1"); !IsPermissionError(err) {
		t.Errorf("Teachers should not browse a student's submissions, got %v", err)
	}

	if _, err := service.ListByStudent(ctx, "student-1", repositories.SubmissionFilters{}, "admin-1"); err != nil {
		t.Errorf("Admin should see anyone's submissions: %v", err)
	}
}
