package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/events"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/models"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/repositories"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/validator"
)

func newCourseworkFixture(t *testing.T) (*fakeRepository, *events.MockEventPublisher, CourseworkService) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher(logger)
	repo := newFakeRepository()

	repo.user.users["teacher-1"] = &models.User{ID: "teacher-1", FullName: "Grace Hopper", Email: "grace@example.com", Role: models.RoleTeacher}
	repo.user.users["teacher-2"] = &models.User{ID: "teacher-2", FullName: "Alan Kay", Email: "alan@example.com", Role: models.RoleTeacher}
	repo.user.users["student-1"] = &models.User{ID: "student-1", FullName: "Ada Lovelace", Email: "ada@example.com", Role: models.RoleStudent}
	repo.user.users["admin-1"] = &models.User{ID: "admin-1", FullName: "Root Admin", Email: "admin@example.com", Role: models.RoleAdmin}

	repo.course.courses[1] = &models.Course{ID: 1, Title: "Distributed Systems", TeacherID: "teacher-1"}

	service := NewCourseworkService(repo, nil, logger, validator.New(), publisher)
	return repo, publisher, service
}

func TestCourseworkService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner_Creates_And_Publishes", func(t *testing.T) {
		_, publisher, service := newCourseworkFixture(t)

		resp, err := service.Create(ctx, 1, &CreateCourseworkRequest{Title: "Consensus lab"}, "teacher-1")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if resp.Coursework.Title != "Consensus lab" || resp.Coursework.CourseID != 1 {
			t.Errorf("Unexpected coursework: %+v", resp.Coursework)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventCourseworkCreated {
			t.Errorf("Expected one %q event, got %+v", events.EventCourseworkCreated, published)
		}
	})

	t.Run("NonOwner_Teacher_Denied", func(t *testing.T) {
		_, _, service := newCourseworkFixture(t)

		if _, err := service.Create(ctx, 1, &CreateCourseworkRequest{Title: "Consensus lab"}, "teacher-2"); !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
	})

	t.Run("Student_Denied", func(t *testing.T) {
		_, _, service := newCourseworkFixture(t)

		if _, err := service.Create(ctx, 1, &CreateCourseworkRequest{Title: "Consensus lab"}, "student-1"); !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
	})

	t.Run("Past_Due_Date_Rejected", func(t *testing.T) {
		_, _, service := newCourseworkFixture(t)

		yesterday := time.Now().Add(-24 * time.Hour)
		_, err := service.Create(ctx, 1, &CreateCourseworkRequest{Title: "Consensus lab", DueDate: &yesterday}, "teacher-1")

		var validationErrs ValidationErrors
		if !errors.As(err, &validationErrs) {
			t.Fatalf("Expected validation errors for past due date, got %v", err)
		}
	})

	t.Run("Unknown_Course", func(t *testing.T) {
		_, _, service := newCourseworkFixture(t)

		if _, err := service.Create(ctx, 99, &CreateCourseworkRequest{Title: "Consensus lab"}, "teacher-1"); !errors.Is(err, ErrCourseNotFound) {
			t.Fatalf("Expected ErrCourseNotFound, got %v", err)
		}
	})
}

func TestCourseworkService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner_Updates_Title", func(t *testing.T) {
		repo, _, service := newCourseworkFixture(t)
		repo.coursework.coursework[1] = &models.Coursework{ID: 1, CourseID: 1, Title: "Draft"}
		repo.coursework.nextID = 1

		newTitle := "Final"
		resp, err := service.Update(ctx, 1, &UpdateCourseworkRequest{Title: &newTitle}, "teacher-1")
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if resp.Coursework.Title != "Final" {
			t.Errorf("Expected updated title, got %q", resp.Coursework.Title)
		}
	})

	t.Run("Ownership_Transfer_Flips_Mutation_Rights", func(t *testing.T) {
		repo, _, service := newCourseworkFixture(t)
		repo.coursework.coursework[1] = &models.Coursework{ID: 1, CourseID: 1, Title: "Draft"}
		repo.coursework.nextID = 1

		repo.course.courses[1].TeacherID = "teacher-2"

		newTitle := "Final"
		if _, err := service.Update(ctx, 1, &UpdateCourseworkRequest{Title: &newTitle}, "teacher-1"); !IsPermissionError(err) {
			t.Fatalf("Former owner should lose mutation rights, got %v", err)
		}
		if _, err := service.Update(ctx, 1, &UpdateCourseworkRequest{Title: &newTitle}, "teacher-2"); err != nil {
			t.Fatalf("New owner should gain mutation rights, got %v", err)
		}
	})

	t.Run("Missing_Coursework", func(t *testing.T) {
		_, _, service := newCourseworkFixture(t)

		newTitle := "Final"
		if _, err := service.Update(ctx, 99, &UpdateCourseworkRequest{Title: &newTitle}, "teacher-1"); !errors.Is(err, ErrCourseworkNotFound) {
			t.Fatalf("Expected ErrCourseworkNotFound, got %v", err)
		}
	})
}

func TestCourseworkService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner_Deletes", func(t *testing.T) {
		repo, _, service := newCourseworkFixture(t)
		repo.coursework.coursework[1] = &models.Coursework{ID: 1, CourseID: 1, Title: "Draft"}
		repo.coursework.nextID = 1

		if err := service.Delete(ctx, 1, "teacher-1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, ok := repo.coursework.coursework[1]; ok {
			t.Error("Coursework should be removed")
		}
	})

	t.Run("NonOwner_Denied", func(t *testing.T) {
		repo, _, service := newCourseworkFixture(t)
		repo.coursework.coursework[1] = &models.Coursework{ID: 1, CourseID: 1, Title: "Draft"}
		repo.coursework.nextID = 1

		if err := service.Delete(ctx, 1, "teacher-2"); !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
	})

	t.Run("Missing_Coursework", func(t *testing.T) {
		_, _, service := newCourseworkFixture(t)

		if err := service.Delete(ctx, 99, "teacher-1"); !errors.Is(err, ErrCourseworkNotFound) {
			t.Fatalf("Expected ErrCourseworkNotFound, got %v", err)
		}
	})
}

func TestCourseworkService_ListByCourse(t *testing.T) {
	ctx := context.Background()

	repo, _, service := newCourseworkFixture(t)
	repo.coursework.coursework[1] = &models.Coursework{ID: 1, CourseID: 1, Title: "Lab 1"}
	repo.coursework.coursework[2] = &models.Coursework{ID: 2, CourseID: 1, Title: "Lab 2"}
	repo.coursework.nextID = 2

	t.Run("Owner_Can_Edit_Listed_Items", func(t *testing.T) {
		resp, err := service.ListByCourse(ctx, 1, repositories.CourseworkFilters{}, "teacher-1")
		if err != nil {
			t.Fatalf("ListByCourse failed: %v", err)
		}
		if resp.Total != 2 {
			t.Fatalf("Expected 2 items, got %d", resp.Total)
		}
		for _, item := range resp.Coursework {
			if !item.CanEdit {
				t.Errorf("Owner should see CanEdit on %q", item.Coursework.Title)
			}
		}
	})

	t.Run("Student_Reads_Without_Edit_Rights", func(t *testing.T) {
		resp, err := service.ListByCourse(ctx, 1, repositories.CourseworkFilters{}, "student-1")
		if err != nil {
			t.Fatalf("ListByCourse failed: %v", err)
		}
		for _, item := range resp.Coursework {
			if item.CanEdit {
				t.Errorf("Student should not see CanEdit on %q", item.Coursework.Title)
			}
		}
	})
}
