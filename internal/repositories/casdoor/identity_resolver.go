package casdoor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/redis/go-redis/v9"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/models"
)

// CasdoorConfig holds the configuration for Casdoor connection
type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

// IdentityResolver turns Casdoor principals into identity seeds for
// the local user store. It never touches the users table itself; the
// stored row (and its role) stays authoritative once it exists.
type IdentityResolver struct {
	client *casdoorsdk.Client
	redis  *redis.Client
	config CasdoorConfig

	// Cache settings
	cachePrefix string
	cacheTTL    time.Duration
}

func NewIdentityResolver(config CasdoorConfig, redisClient *redis.Client) *IdentityResolver {
	client := casdoorsdk.NewClient(
		config.Endpoint,
		config.ClientID,
		config.ClientSecret,
		config.Certificate,
		config.OrganizationName,
		config.ApplicationName,
	)

	return &IdentityResolver{
		client:      client,
		redis:       redisClient,
		config:      config,
		cachePrefix: "identity:",
		cacheTTL:    15 * time.Minute,
	}
}

// ParseToken verifies a bearer token and returns its claims
func (r *IdentityResolver) ParseToken(token string) (*casdoorsdk.Claims, error) {
	claims, err := r.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return claims, nil
}

// ResolveClaims builds an identity seed from verified token claims.
// The role here is only a hint for first sign-in.
func (r *IdentityResolver) ResolveClaims(claims *casdoorsdk.Claims) *models.User {
	if claims == nil {
		return nil
	}

	user := r.convertCasdoorUserToModel(&claims.User)
	if user != nil && user.ID == "" {
		user.ID = claims.Subject
	}
	return user
}

// ResolveByID fetches an identity from Casdoor by user ID with caching
func (r *IdentityResolver) ResolveByID(ctx context.Context, id string) (*models.User, error) {
	cacheKey := fmt.Sprintf("id:%s", id)
	if cached, err := r.getIdentityFromCache(ctx, cacheKey); err == nil && cached != nil {
		return cached, nil
	}

	casdoorUser, err := r.client.GetUserByUserId(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user from Casdoor: %w", err)
	}

	if casdoorUser == nil {
		return nil, fmt.Errorf("identity not found for ID %s", id)
	}

	user := r.convertCasdoorUserToModel(casdoorUser)
	if user == nil {
		return nil, fmt.Errorf("failed to convert Casdoor user")
	}

	r.setIdentityCache(ctx, cacheKey, user)

	return user, nil
}

// ===== CACHE METHODS =====

func (r *IdentityResolver) getCacheKey(key string) string {
	return fmt.Sprintf("%s%s", r.cachePrefix, key)
}

func (r *IdentityResolver) getIdentityFromCache(ctx context.Context, key string) (*models.User, error) {
	if r.redis == nil {
		return nil, nil // Cache not available
	}

	cacheKey := r.getCacheKey(key)
	data, err := r.redis.Get(ctx, cacheKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Not found in cache
		}
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached identity: %w", err)
	}

	return &user, nil
}

func (r *IdentityResolver) setIdentityCache(ctx context.Context, key string, user *models.User) error {
	if r.redis == nil {
		return nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal identity for cache: %w", err)
	}

	cacheKey := r.getCacheKey(key)
	return r.redis.Set(ctx, cacheKey, data, r.cacheTTL).Err()
}

// ===== CONVERSION METHODS =====

// convertCasdoorUserToModel converts a Casdoor user to an identity seed
func (r *IdentityResolver) convertCasdoorUserToModel(casdoorUser *casdoorsdk.User) *models.User {
	if casdoorUser == nil {
		return nil
	}

	var createdAt, updatedAt time.Time
	if casdoorUser.CreatedTime != "" {
		createdAt, _ = time.Parse(time.RFC3339, casdoorUser.CreatedTime)
	}
	if casdoorUser.UpdatedTime != "" {
		updatedAt, _ = time.Parse(time.RFC3339, casdoorUser.UpdatedTime)
	}

	var avatarURL *string
	if casdoorUser.Avatar != "" {
		avatarURL = &casdoorUser.Avatar
	}

	return &models.User{
		ID:            casdoorUser.Id,
		FullName:      casdoorUser.DisplayName,
		Email:         casdoorUser.Email,
		Role:          r.convertCasdoorRolesToModel(casdoorUser),
		AvatarURL:     avatarURL,
		EmailVerified: casdoorUser.EmailVerified,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
}

func (r *IdentityResolver) convertCasdoorRolesToModel(casdoorUser *casdoorsdk.User) models.UserRole {
	var roles []models.UserRole
	seen := make(map[models.UserRole]bool)
	for _, casdoorRole := range casdoorUser.Roles {
		mappedRole, ok := r.mapCasdoorRoleName(casdoorRole.Name)
		if !ok {
			continue
		}
		if !seen[mappedRole] {
			roles = append(roles, mappedRole)
			seen[mappedRole] = true
		}
	}

	// Admin wins over everything else
	if slices.Contains(roles, models.RoleAdmin) || casdoorUser.IsAdmin {
		return models.RoleAdmin
	}

	if len(roles) == 0 {
		return models.RoleStudent // Default role
	}
	return roles[0]
}

// mapCasdoorRoleName maps a Casdoor role name onto the closed role set.
// Unknown names are skipped rather than guessed at.
func (r *IdentityResolver) mapCasdoorRoleName(name string) (models.UserRole, bool) {
	switch strings.ToLower(name) {
	case "student":
		return models.RoleStudent, true
	case "teacher", "instructor":
		return models.RoleTeacher, true
	case "admin", "administrator":
		return models.RoleAdmin, true
	default:
		return "", false
	}
}
