package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"gorm.io/gorm"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/events"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/models"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/repositories"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/validator"
)

// ===== IN-MEMORY REPOSITORY FAKES =====

type fakeCourseRepo struct {
	courses map[uint]*models.Course

	// wired by newFakeRepository so Delete mirrors the FK cascade
	coursework *fakeCourseworkRepo
	enrollment *fakeEnrollmentRepo
	submission *fakeSubmissionRepo
}

func (f *fakeCourseRepo) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	course.ID = uint(len(f.courses) + 1)
	f.courses[course.ID] = course
	return nil
}

func (f *fakeCourseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return course, nil
}

func (f *fakeCourseRepo) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	return f.GetByID(ctx, tx, id)
}

func (f *fakeCourseRepo) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	f.courses[course.ID] = course
	return nil
}

func (f *fakeCourseRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(f.courses, id)
	for cwID, cw := range f.coursework.coursework {
		if cw.CourseID != id {
			continue
		}
		for subID, sub := range f.submission.submissions {
			if sub.CourseworkID == cwID {
				delete(f.submission.submissions, subID)
			}
		}
		delete(f.coursework.coursework, cwID)
	}
	for enrollID, enrollment := range f.enrollment.enrollments {
		if enrollment.CourseID == id {
			delete(f.enrollment.enrollments, enrollID)
		}
	}
	return nil
}

func (f *fakeCourseRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	return nil, 0, nil
}

func (f *fakeCourseRepo) GetByTeacher(ctx context.Context, tx *gorm.DB, teacherID string, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	return nil, 0, nil
}

func (f *fakeCourseRepo) IsOwner(ctx context.Context, tx *gorm.DB, courseID uint, teacherID string) (bool, error) {
	course, ok := f.courses[courseID]
	return ok && course.TeacherID == teacherID, nil
}

func (f *fakeCourseRepo) GetStats(ctx context.Context, tx *gorm.DB, id uint) (*repositories.CourseStats, error) {
	return &repositories.CourseStats{}, nil
}

func (f *fakeCourseRepo) GetTeacherStats(ctx context.Context, tx *gorm.DB, teacherID string) (*repositories.TeacherStats, error) {
	return &repositories.TeacherStats{}, nil
}

type fakeCourseworkRepo struct {
	coursework map[uint]*models.Coursework
	nextID     uint
}

func (f *fakeCourseworkRepo) Create(ctx context.Context, tx *gorm.DB, coursework *models.Coursework) error {
	f.nextID++
	coursework.ID = f.nextID
	f.coursework[coursework.ID] = coursework
	return nil
}

func (f *fakeCourseworkRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Coursework, error) {
	coursework, ok := f.coursework[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return coursework, nil
}

func (f *fakeCourseworkRepo) Update(ctx context.Context, tx *gorm.DB, coursework *models.Coursework) error {
	f.coursework[coursework.ID] = coursework
	return nil
}

func (f *fakeCourseworkRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(f.coursework, id)
	return nil
}

func (f *fakeCourseworkRepo) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint, filters repositories.CourseworkFilters) ([]*models.Coursework, int64, error) {
	var result []*models.Coursework
	for _, cw := range f.coursework {
		if cw.CourseID == courseID {
			result = append(result, cw)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakeCourseworkRepo) CountByCourse(ctx context.Context, tx *gorm.DB, courseID uint) (int64, error) {
	_, total, _ := f.ListByCourse(ctx, tx, courseID, repositories.CourseworkFilters{})
	return total, nil
}

type fakeSubmissionRepo struct {
	submissions map[uint]*models.Submission
	nextID      uint
}

// Create upserts on (coursework_id, student_id) like the real store
func (f *fakeSubmissionRepo) Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	for _, s := range f.submissions {
		if s.CourseworkID == submission.CourseworkID && s.StudentID == submission.StudentID {
			s.Content = submission.Content
			s.SubmittedAt = submission.SubmittedAt
			*submission = *s
			return nil
		}
	}
	f.nextID++
	submission.ID = f.nextID
	f.submissions[submission.ID] = submission
	return nil
}

func (f *fakeSubmissionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	submission, ok := f.submissions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return submission, nil
}

func (f *fakeSubmissionRepo) ListByCoursework(ctx context.Context, tx *gorm.DB, courseworkID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	var result []*models.Submission
	for _, s := range f.submissions {
		if s.CourseworkID == courseworkID {
			result = append(result, s)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakeSubmissionRepo) ListByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	var result []*models.Submission
	for _, s := range f.submissions {
		if s.StudentID == studentID {
			result = append(result, s)
		}
	}
	return result, int64(len(result)), nil
}

type fakeEnrollmentRepo struct {
	enrollments map[uint]*models.Enrollment
	nextID      uint

	// createErr forces the next Create to fail, simulating a
	// unique-constraint race lost to a concurrent insert
	createErr error
}

func (f *fakeEnrollmentRepo) Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	if f.createErr != nil {
		err := f.createErr
		f.createErr = nil
		return err
	}
	for _, e := range f.enrollments {
		if e.CourseID == enrollment.CourseID && e.StudentID == enrollment.StudentID {
			return repositories.ErrDuplicate
		}
	}
	f.nextID++
	enrollment.ID = f.nextID
	f.enrollments[enrollment.ID] = enrollment
	return nil
}

func (f *fakeEnrollmentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Enrollment, error) {
	enrollment, ok := f.enrollments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return enrollment, nil
}

func (f *fakeEnrollmentRepo) GetByCourseAndStudent(ctx context.Context, tx *gorm.DB, courseID uint, studentID string) (*models.Enrollment, error) {
	for _, e := range f.enrollments {
		if e.CourseID == courseID && e.StudentID == studentID {
			return e, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeEnrollmentRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(f.enrollments, id)
	return nil
}

func (f *fakeEnrollmentRepo) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint, filters repositories.EnrollmentFilters) ([]*models.Enrollment, int64, error) {
	var result []*models.Enrollment
	for _, e := range f.enrollments {
		if e.CourseID == courseID {
			result = append(result, e)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakeEnrollmentRepo) ListByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.EnrollmentFilters) ([]*models.Enrollment, int64, error) {
	var result []*models.Enrollment
	for _, e := range f.enrollments {
		if e.StudentID == studentID {
			result = append(result, e)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakeEnrollmentRepo) Exists(ctx context.Context, tx *gorm.DB, courseID uint, studentID string) (bool, error) {
	_, err := f.GetByCourseAndStudent(ctx, tx, courseID, studentID)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (f *fakeEnrollmentRepo) CountByCourse(ctx context.Context, tx *gorm.DB, courseID uint) (int64, error) {
	_, total, _ := f.ListByCourse(ctx, tx, courseID, repositories.EnrollmentFilters{})
	return total, nil
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	var result []*models.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) EnsureFromIdentity(ctx context.Context, identity *models.User) (*models.User, error) {
	if user, ok := f.users[identity.ID]; ok {
		return user, nil
	}
	for _, user := range f.users {
		if user.Email == identity.Email {
			return nil, repositories.ErrDuplicate
		}
	}
	f.users[identity.ID] = identity
	return identity, nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id string, fullName *string, avatarURL *string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if fullName != nil {
		user.FullName = *fullName
	}
	if avatarURL != nil {
		user.AvatarURL = avatarURL
	}
	return user, nil
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, id string, role models.UserRole) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	user.Role = role
	return user, nil
}

func (f *fakeUserRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var result []*models.User
	for _, u := range f.users {
		result = append(result, u)
	}
	return result, int64(len(result)), nil
}

func (f *fakeUserRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, ok := f.users[id]
	return ok, nil
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUserRepo) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	user, ok := f.users[id]
	return ok && user.Role == role, nil
}

// fakeRepository aggregates the fakes behind the Repository interface
type fakeRepository struct {
	course     *fakeCourseRepo
	coursework *fakeCourseworkRepo
	enrollment *fakeEnrollmentRepo
	submission *fakeSubmissionRepo
	user       *fakeUserRepo
}

func newFakeRepository() *fakeRepository {
	f := &fakeRepository{
		course:     &fakeCourseRepo{courses: make(map[uint]*models.Course)},
		coursework: &fakeCourseworkRepo{coursework: make(map[uint]*models.Coursework)},
		enrollment: &fakeEnrollmentRepo{enrollments: make(map[uint]*models.Enrollment)},
		submission: &fakeSubmissionRepo{submissions: make(map[uint]*models.Submission)},
		user:       &fakeUserRepo{users: make(map[string]*models.User)},
	}
	f.course.coursework = f.coursework
	f.course.enrollment = f.enrollment
	f.course.submission = f.submission
	return f
}

func (f *fakeRepository) Course() repositories.CourseRepository         { return f.course }
func (f *fakeRepository) Coursework() repositories.CourseworkRepository { return f.coursework }
func (f *fakeRepository) Enrollment() repositories.EnrollmentRepository { return f.enrollment }
func (f *fakeRepository) Submission() repositories.SubmissionRepository { return f.submission }
func (f *fakeRepository) User() repositories.UserRepository             { return f.user }
func (f *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}
func (f *fakeRepository) Ping(ctx context.Context) error { return nil }
func (f *fakeRepository) Close() error                   { return nil }

// ===== TEST SETUP =====

func newEnrollmentFixture(t *testing.T) (*fakeRepository, *events.MockEventPublisher, EnrollmentService) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher(logger)
	repo := newFakeRepository()

	repo.user.users["teacher-1"] = &models.User{ID: "teacher-1", FullName: "Grace Hopper", Email: "grace@example.com", Role: models.RoleTeacher}
	repo.user.users["teacher-2"] = &models.User{ID: "teacher-2", FullName: "Alan Kay", Email: "alan@example.com", Role: models.RoleTeacher}
	repo.user.users["student-1"] = &models.User{ID: "student-1", FullName: "Ada Lovelace", Email: "ada@example.com", Role: models.RoleStudent}
	repo.user.users["admin-1"] = &models.User{ID: "admin-1", FullName: "Root Admin", Email: "admin@example.com", Role: models.RoleAdmin}

	repo.course.courses[1] = &models.Course{ID: 1, Title: "Distributed Systems", TeacherID: "teacher-1"}

	service := NewEnrollmentService(repo, nil, logger, validator.New(), publisher)
	return repo, publisher, service
}

// ===== TESTS =====

func TestEnrollmentService_Enroll(t *testing.T) {
	ctx := context.Background()

	t.Run("Student_Self_Enrolls", func(t *testing.T) {
		_, publisher, service := newEnrollmentFixture(t)

		resp, err := service.Enroll(ctx, 1, &EnrollRequest{StudentID: "student-1"}, "student-1")
		if err != nil {
			t.Fatalf("Failed to enroll: %v", err)
		}
		if resp.Enrollment.CourseID != 1 || resp.Enrollment.StudentID != "student-1" {
			t.Errorf("Unexpected enrollment row: %+v", resp.Enrollment)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}
		if published[0].Type != events.EventEnrollmentCreated {
			t.Errorf("Expected event type %q, got %q", events.EventEnrollmentCreated, published[0].Type)
		}
		if published[0].Source != "lms-service" {
			t.Errorf("Expected source 'lms-service', got %q", published[0].Source)
		}
	})

	t.Run("Owner_Teacher_Enrolls_Student", func(t *testing.T) {
		_, _, service := newEnrollmentFixture(t)

		if _, err := service.Enroll(ctx, 1, &EnrollRequest{StudentID: "student-1"}, "teacher-1"); err != nil {
			t.Fatalf("Owner should be able to enroll a student: %v", err)
		}
	})

	t.Run("NonOwner_Teacher_Denied", func(t *testing.T) {
		_, _, service := newEnrollmentFixture(t)

		_, err := service.Enroll(ctx, 1, &EnrollRequest{StudentID: "student-1"}, "teacher-2")
		if !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
	})

	t.Run("Student_Cannot_Enroll_Others", func(t *testing.T) {
		repo, _, service := newEnrollmentFixture(t)
		repo.user.users["student-2"] = &models.User{ID: "student-2", FullName: "Joan Clarke", Email: "joan@example.com", Role: models.RoleStudent}

		_, err := service.Enroll(ctx, 1, &EnrollRequest{StudentID: "student-2"}, "student-1")
		if !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
	})

	t.Run("Only_Students_Can_Be_Enrolled", func(t *testing.T) {
		_, _, service := newEnrollmentFixture(t)

		_, err := service.Enroll(ctx, 1, &EnrollRequest{StudentID: "teacher-2"}, "admin-1")
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("Expected validation error, got %v", err)
		}
	})

	t.Run("Double_Enroll_Conflicts", func(t *testing.T) {
		_, _, service := newEnrollmentFixture(t)

		if _, err := service.Enroll(ctx, 1, &EnrollRequest{StudentID: "student-1"}, "student-1"); err != nil {
			t.Fatalf("First enroll failed: %v", err)
		}

		_, err := service.Enroll(ctx, 1, &EnrollRequest{StudentID: "student-1"}, "student-1")
		if !errors.Is(err, ErrAlreadyEnrolled) {
			t.Fatalf("Expected ErrAlreadyEnrolled, got %v", err)
		}
	})

	t.Run("Lost_Insert_Race_Maps_To_Conflict", func(t *testing.T) {
		// The advisory pre-check passes but the unique index rejects
		// the insert; the caller still sees the conflict error.
		repo, _, service := newEnrollmentFixture(t)
		repo.enrollment.createErr = repositories.ErrDuplicate

		_, err := service.Enroll(ctx, 1, &EnrollRequest{StudentID: "student-1"}, "student-1")
		if !errors.Is(err, ErrAlreadyEnrolled) {
			t.Fatalf("Expected ErrAlreadyEnrolled, got %v", err)
		}
	})

	t.Run("Unknown_Course", func(t *testing.T) {
		_, _, service := newEnrollmentFixture(t)

		_, err := service.Enroll(ctx, 99, &EnrollRequest{StudentID: "student-1"}, "student-1")
		if !errors.Is(err, ErrCourseNotFound) {
			t.Fatalf("Expected ErrCourseNotFound, got %v", err)
		}
	})
}

func TestEnrollmentService_Unenroll(t *testing.T) {
	ctx := context.Background()

	t.Run("Removes_Enrollment_And_Publishes", func(t *testing.T) {
		_, publisher, service := newEnrollmentFixture(t)

		if _, err := service.Enroll(ctx, 1, &EnrollRequest{StudentID: "student-1"}, "student-1"); err != nil {
			t.Fatalf("Enroll failed: %v", err)
		}
		publisher.ClearEvents()

		if err := service.Unenroll(ctx, 1, "student-1", "teacher-1"); err != nil {
			t.Fatalf("Unenroll failed: %v", err)
		}

		enrolled, err := service.IsEnrolled(ctx, 1, "student-1")
		if err != nil {
			t.Fatalf("IsEnrolled failed: %v", err)
		}
		if enrolled {
			t.Error("Student should no longer be enrolled")
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventEnrollmentDeleted {
			t.Errorf("Expected one %q event, got %+v", events.EventEnrollmentDeleted, published)
		}
	})

	t.Run("Missing_Enrollment", func(t *testing.T) {
		_, _, service := newEnrollmentFixture(t)

		err := service.Unenroll(ctx, 1, "student-1", "teacher-1")
		if !errors.Is(err, ErrEnrollmentNotFound) {
			t.Fatalf("Expected ErrEnrollmentNotFound, got %v", err)
		}
	})
}

func TestEnrollmentService_Listing(t *testing.T) {
	ctx := context.Background()

	t.Run("Roster_Restricted_To_Owner", func(t *testing.T) {
		_, _, service := newEnrollmentFixture(t)

		if _, err := service.Enroll(ctx, 1, &EnrollRequest{StudentID: "student-1"}, "student-1"); err != nil {
			t.Fatalf("Enroll failed: %v", err)
		}

		if _, err := service.ListByCourse(ctx, 1, repositories.EnrollmentFilters{}, "teacher-1"); err != nil {
			t.Errorf("Owner should see the roster: %v", err)
		}

		if _, err := service.ListByCourse(ctx, 1, repositories.EnrollmentFilters{}, "teacher-2"); !IsPermissionError(err) {
			t.Errorf("Non-owner teacher should be denied, got %v", err)
		}
	})

	t.Run("Student_Sees_Only_Own_Enrollments", func(t *testing.T) {
		repo, _, service := newEnrollmentFixture(t)
		repo.user.users["student-2"] = &models.User{ID: "student-2", FullName: "Joan Clarke", Email: "joan@example.com", Role: models.RoleStudent}

		if _, err := service.ListByStudent(ctx, "student-1", repositories.EnrollmentFilters{}, "student-1"); err != nil {
			t.Errorf("Student should see own enrollments: %v", err)
		}

		if _, err := service.ListByStudent(ctx, "student-1", repositories.EnrollmentFilters{}, "student-2"); !IsPermissionError(err) {
			t.Errorf("Expected permission error for another student's list, got %v", err)
		}

		if _, err := service.ListByStudent(ctx, "student-1", repositories.EnrollmentFilters{}, "admin-1"); err != nil {
			t.Errorf("Admin should see anyone's enrollments: %v", err)
		}
	})
}
