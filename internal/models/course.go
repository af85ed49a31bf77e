package models

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`

	// Ownership: exactly one teacher at a time, reassignable by update.
	TeacherID string `json:"teacher_id" gorm:"not null;index;size:255"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Teacher     User         `json:"teacher" gorm:"foreignKey:TeacherID"`
	Coursework  []Coursework `json:"coursework,omitempty" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	Enrollments []Enrollment `json:"enrollments,omitempty" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`

	// Computed fields (not stored)
	EnrollmentCount int `json:"enrollment_count" gorm:"-"`
	CourseworkCount int `json:"coursework_count" gorm:"-"`
}

type Coursework struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	CourseID    uint       `json:"course_id" gorm:"not null;index"`
	Title       string     `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string    `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	DueDate     *time.Time `json:"due_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Course      *Course      `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Submissions []Submission `json:"submissions,omitempty" gorm:"foreignKey:CourseworkID;constraint:OnDelete:CASCADE"`
}

func (Course) TableName() string {
	return "courses"
}

func (Coursework) TableName() string {
	return "coursework"
}
