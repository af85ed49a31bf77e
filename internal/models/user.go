package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// ParseRole maps a raw role string to the closed role set. Anything
// unrecognized comes back as ("", false) so callers deny rather than
// silently downgrade a typo.
func ParseRole(s string) (UserRole, bool) {
	switch UserRole(s) {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return UserRole(s), true
	default:
		return "", false
	}
}

func (r UserRole) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	FullName string   `json:"full_name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role     UserRole `json:"role" gorm:"not null;size:20;default:student;index"`

	// Profile info
	AvatarURL *string `json:"avatar_url" gorm:"size:500"`

	// Status
	EmailVerified bool `json:"email_verified" gorm:"default:false"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
