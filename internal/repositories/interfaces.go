package repositories

import (
	"time"
)

// ===== SHARED FILTER STRUCTS =====

type CourseFilters struct {
	TeacherID *string `json:"teacher_id"`
	Query     string  `json:"query"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
	SortBy    string  `json:"sort_by"`    // "title", "created_at"
	SortOrder string  `json:"sort_order"` // "asc", "desc"
}

type CourseworkFilters struct {
	CourseID  *uint      `json:"course_id"`
	DueBefore *time.Time `json:"due_before"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"` // "title", "created_at", "due_date"
	SortOrder string     `json:"sort_order"`
}

type EnrollmentFilters struct {
	CourseID  *uint   `json:"course_id"`
	StudentID *string `json:"student_id"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
	SortBy    string  `json:"sort_by"` // "enrolled_at"
	SortOrder string  `json:"sort_order"`
}

type SubmissionFilters struct {
	CourseworkID *uint   `json:"coursework_id"`
	StudentID    *string `json:"student_id"`
	Limit        int     `json:"limit"`
	Offset       int     `json:"offset"`
}

// UserFilters defines filters for user queries.
type UserFilters struct {
	Query  string // Search query for name or email
	Role   string // Optional role filter
	Limit  int    // Page size
	Offset int    // Offset for pagination
}

// ===== SHARED STATISTICS STRUCTS =====

type CourseStats struct {
	EnrollmentCount int `json:"enrollment_count"`
	CourseworkCount int `json:"coursework_count"`
	SubmissionCount int `json:"submission_count"`
}

type TeacherStats struct {
	TotalCourses     int `json:"total_courses"`
	TotalCoursework  int `json:"total_coursework"`
	TotalEnrollments int `json:"total_enrollments"`
}
