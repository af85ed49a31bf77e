package models

import (
	"time"

	"gorm.io/datatypes"
)

// Enrollment joins one student to one course. The composite unique
// index is the authoritative duplicate guard; application-level
// pre-checks are advisory only.
type Enrollment struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	CourseID  uint   `json:"course_id" gorm:"not null;uniqueIndex:idx_course_student"`
	StudentID string `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_course_student"`

	EnrolledAt time.Time `json:"enrolled_at" gorm:"autoCreateTime"`

	// Relations
	Course  *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Student *User   `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// Submission associates a coursework item with a student's answer.
// One submission per (coursework, student) pair.
type Submission struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	CourseworkID uint   `json:"coursework_id" gorm:"not null;uniqueIndex:idx_coursework_student"`
	StudentID    string `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_coursework_student"`

	Content datatypes.JSON `json:"content" gorm:"type:jsonb"`

	SubmittedAt time.Time `json:"submitted_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Coursework *Coursework `json:"coursework,omitempty" gorm:"foreignKey:CourseworkID"`
	Student    *User       `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

func (Submission) TableName() string {
	return "submissions"
}
