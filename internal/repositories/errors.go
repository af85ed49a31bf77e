package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Sentinel errors surfaced by repository implementations. Services
// classify storage failures through these rather than inspecting
// driver errors themselves.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// IsNotFoundError reports whether err means the record is absent.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a unique-constraint
// violation. This is the authoritative Conflict signal for
// check-then-insert races; application pre-checks are advisory only.
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Postgres unique_violation surfaced without gorm translation.
	return strings.Contains(err.Error(), "SQLSTATE 23505")
}
