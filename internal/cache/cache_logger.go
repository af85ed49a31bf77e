package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateCourseCache invalidates all course-related caches
func InvalidateCourseCache(ctx context.Context, cm *CacheManager, courseID uint, teacherID string) {
	SafeDelete(ctx, cm.Course,
		fmt.Sprintf("id:%d", courseID),
		fmt.Sprintf("details:%d", courseID))

	SafeInvalidatePattern(ctx, cm.Course, fmt.Sprintf("teacher:%s:*", teacherID))
	SafeInvalidatePattern(ctx, cm.Course, "list:*")
	SafeInvalidatePattern(ctx, cm.Coursework, fmt.Sprintf("course:%d:*", courseID))
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("course:%d:*", courseID))
}

// InvalidateEnrollmentCache invalidates roster views and per-course stats
// after an enroll or unenroll.
func InvalidateEnrollmentCache(ctx context.Context, cm *CacheManager, courseID uint, studentID string) {
	SafeInvalidatePattern(ctx, cm.Roster, fmt.Sprintf("course:%d:*", courseID))
	SafeInvalidatePattern(ctx, cm.Roster, fmt.Sprintf("student:%s:*", studentID))
	SafeDelete(ctx, cm.Exists, fmt.Sprintf("enrollment:%d:%s", courseID, studentID))
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("course:%d:*", courseID))
	SafeDelete(ctx, cm.Course, fmt.Sprintf("details:%d", courseID))
}

// InvalidateUserCache invalidates a user row and any list views that
// could contain it.
func InvalidateUserCache(ctx context.Context, cm *CacheManager, userID string) {
	SafeDelete(ctx, cm.User, fmt.Sprintf("id:%s", userID))
	SafeInvalidatePattern(ctx, cm.User, "list:*")
	SafeInvalidatePattern(ctx, cm.User, "email:*")
}
