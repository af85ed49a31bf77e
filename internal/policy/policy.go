// Package policy is the single source of truth for authorization
// decisions. Every mutation path calls into it instead of repeating
// inline role comparisons.
package policy

import (
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/models"
)

// Action identifies what the actor is trying to do to a resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// CourseContent describes the resource side of a decision: a course or
// a coursework item, reduced to the one fact that matters here, the
// owning teacher of the (parent) course.
type CourseContent struct {
	OwnerTeacherID string
}

// CanMutateCourseContent reports whether the actor may mutate content
// belonging to the course owned by ownerTeacherID. Admins may always;
// teachers only their own courses; students and unknown roles never.
// Evaluated fresh per call from currently-stored role/ownership, never
// cached.
func CanMutateCourseContent(actorRole models.UserRole, actorID, ownerTeacherID string) bool {
	switch actorRole {
	case models.RoleAdmin:
		return true
	case models.RoleTeacher:
		return actorID != "" && actorID == ownerTeacherID
	default:
		return false
	}
}

// CanCreateCourse reports whether the actor may create a course.
func CanCreateCourse(actorRole models.UserRole) bool {
	return actorRole == models.RoleAdmin || actorRole == models.RoleTeacher
}

// CanManageUsers reports whether the actor may change another user's
// role. Admin only.
func CanManageUsers(actorRole models.UserRole) bool {
	return actorRole == models.RoleAdmin
}

// CanEnrollStudent reports whether the actor may enroll/unenroll the
// given student in a course. Students act for themselves; the course's
// teacher and admins may manage any enrollment of that course.
func CanEnrollStudent(actor *models.User, studentID, courseTeacherID string) bool {
	if actor == nil {
		return false
	}
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleTeacher:
		return actor.ID == courseTeacherID
	case models.RoleStudent:
		return actor.ID == studentID
	default:
		return false
	}
}

// Authorize is the generic entry point: may actor perform action on
// course content owned by res.OwnerTeacherID. Reads are open to any
// valid role; everything else routes through CanMutateCourseContent.
func Authorize(actor *models.User, action Action, res CourseContent) bool {
	if actor == nil || !actor.Role.Valid() {
		return false
	}
	if action == ActionRead {
		return true
	}
	return CanMutateCourseContent(actor.Role, actor.ID, res.OwnerTeacherID)
}
