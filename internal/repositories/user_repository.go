package repositories

import (
	"context"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/models"
)

// UserRepository persists application-level user rows. Identity (who
// the principal is) comes from Casdoor; this repository owns the local
// record that carries the authoritative role and unique email.
type UserRepository interface {
	// Basic read operations
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)

	// Write operations
	Create(ctx context.Context, user *models.User) error
	// EnsureFromIdentity looks up the row for an authenticated principal,
	// creating it on first sign-in. Returns the stored row, whose role is
	// authoritative over anything the token claims.
	EnsureFromIdentity(ctx context.Context, identity *models.User) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, fullName *string, avatarURL *string) (*models.User, error)
	UpdateRole(ctx context.Context, id string, role models.UserRole) (*models.User, error)

	// List and search operations
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)

	// Validation and checks
	ExistsByID(ctx context.Context, id string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	HasRole(ctx context.Context, id string, role models.UserRole) (bool, error)
}
