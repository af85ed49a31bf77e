package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/cache"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/models"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/repositories"
)

// UserPostgreSQL stores the local user rows. Identity comes from the
// identity provider; this table carries the authoritative role and the
// unique email.
type UserPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.UserRepository {
	return &UserPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// GetByID retrieves a user by ID with caching
func (u *UserPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	cacheKey := fmt.Sprintf("id:%s", id)
	var user models.User

	err := u.cacheManager.User.CacheOrExecute(ctx, cacheKey, &user, cache.FastCacheConfig.TTL, func() (interface{}, error) {
		var dbUser models.User
		if err := u.db.WithContext(ctx).First(&dbUser, "id = ?", id).Error; err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		return &dbUser, nil
	})

	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetByEmail retrieves a user by email
func (u *UserPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// GetByIDs retrieves multiple users in one query
func (u *UserPostgreSQL) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}

	var users []*models.User
	if err := u.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	return users, nil
}

// Create inserts a user row. A duplicate email surfaces as
// repositories.ErrDuplicate.
func (u *UserPostgreSQL) Create(ctx context.Context, user *models.User) error {
	if err := u.db.WithContext(ctx).Create(user).Error; err != nil {
		if repositories.IsDuplicateError(err) {
			return fmt.Errorf("user with email %s already exists: %w", user.Email, repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	cache.InvalidateUserCache(ctx, u.cacheManager, user.ID)

	return nil
}

// EnsureFromIdentity looks up the row for an authenticated principal,
// creating it on first sign-in. The stored role is authoritative: an
// existing row wins over whatever the token claims.
func (u *UserPostgreSQL) EnsureFromIdentity(ctx context.Context, identity *models.User) (*models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).First(&user, "id = ?", identity.ID).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// First sign-in. Unknown or missing roles collapse to student.
	newUser := *identity
	if !newUser.Role.Valid() {
		newUser.Role = models.RoleStudent
	}

	if err := u.db.WithContext(ctx).Create(&newUser).Error; err != nil {
		// Lost a race with a concurrent first sign-in or hit the email
		// constraint. Re-read; if the row is there, use it.
		if repositories.IsDuplicateError(err) {
			if rerr := u.db.WithContext(ctx).First(&user, "id = ?", identity.ID).Error; rerr == nil {
				return &user, nil
			}
			return nil, fmt.Errorf("user with email %s already exists: %w", identity.Email, repositories.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	cache.InvalidateUserCache(ctx, u.cacheManager, newUser.ID)

	return &newUser, nil
}

// UpdateProfile updates the self-editable fields. Role and email are
// not reachable from here.
func (u *UserPostgreSQL) UpdateProfile(ctx context.Context, id string, fullName *string, avatarURL *string) (*models.User, error) {
	updates := map[string]interface{}{}
	if fullName != nil {
		updates["full_name"] = *fullName
	}
	if avatarURL != nil {
		updates["avatar_url"] = *avatarURL
	}

	if len(updates) > 0 {
		result := u.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update profile: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}

	cache.InvalidateUserCache(ctx, u.cacheManager, id)

	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user after update: %w", err)
	}

	return &user, nil
}

// UpdateRole sets the stored role for a user
func (u *UserPostgreSQL) UpdateRole(ctx context.Context, id string, role models.UserRole) (*models.User, error) {
	result := u.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	cache.InvalidateUserCache(ctx, u.cacheManager, id)

	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user after update: %w", err)
	}

	return &user, nil
}

// List retrieves users with filters and pagination
func (u *UserPostgreSQL) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	query := u.db.WithContext(ctx).Model(&models.User{})

	if filters.Query != "" {
		searchQuery := fmt.Sprintf("%%%s%%", filters.Query)
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", searchQuery, searchQuery)
	}

	if filters.Role != "" {
		query = query.Where("role = ?", filters.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = u.helpers.ApplyPaginationAndSort(query, "full_name", "asc", filters.Limit, filters.Offset)

	var users []*models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ExistsByID checks whether a user row exists
func (u *UserPostgreSQL) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	err := u.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}

	return count > 0, nil
}

// ExistsByEmail checks whether an email is taken
func (u *UserPostgreSQL) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := u.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}

	return count > 0, nil
}

// HasRole checks whether a user holds a specific role
func (u *UserPostgreSQL) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	var count int64
	err := u.db.WithContext(ctx).Model(&models.User{}).Where("id = ? AND role = ?", id, role).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check role: %w", err)
	}

	return count > 0, nil
}
