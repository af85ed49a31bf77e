package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/events"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/models"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/policy"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/repositories"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/validator"
)

type userService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewUserService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) UserService {
	return &userService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
	}
}

func (s *userService) GetByID(ctx context.Context, id string, actorID string) (*UserResponse, error) {
	if _, err := actorLookup(ctx, s.repo, actorID); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &UserResponse{User: user}, nil
}

func (s *userService) List(ctx context.Context, filters repositories.UserFilters, actorID string) (*UserListResponse, error) {
	actor, err := actorLookup(ctx, s.repo, actorID)
	if err != nil {
		return nil, err
	}

	// Directory access is for teachers and admins; students look up
	// individual profiles instead.
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleTeacher {
		return nil, NewPermissionError(actorID, nil, "user", "list", "insufficient role permissions")
	}

	users, total, err := s.repo.User().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]*UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, &UserResponse{User: user})
	}

	return &UserListResponse{
		Users: responses,
		Total: total,
		Page:  pageOf(filters.Limit, filters.Offset),
		Size:  sizeOf(filters.Limit),
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest, actorID string) (*UserResponse, error) {
	s.logger.Info("Updating profile", "user_id", id, "actor_id", actorID)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	actor, err := actorLookup(ctx, s.repo, actorID)
	if err != nil {
		return nil, err
	}

	// Profiles are self-service; admins may edit anyone's.
	if actor.ID != id && actor.Role != models.RoleAdmin {
		return nil, NewPermissionError(actorID, id, "user", "update_profile", "can only edit own profile")
	}

	user, err := s.repo.User().UpdateProfile(ctx, id, req.FullName, req.AvatarURL)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("Profile updated successfully", "user_id", id)

	return &UserResponse{User: user}, nil
}

func (s *userService) UpdateRole(ctx context.Context, id string, req *UpdateRoleRequest, actorID string) (*UserResponse, error) {
	s.logger.Info("Updating role", "user_id", id, "actor_id", actorID, "role", req.Role)

	if errs := s.validator.GetBusinessValidator().ValidateRoleUpdate(req); len(errs) > 0 {
		return nil, errs
	}

	actor, err := actorLookup(ctx, s.repo, actorID)
	if err != nil {
		return nil, err
	}

	if !policy.CanManageUsers(actor.Role) {
		return nil, NewPermissionError(actorID, id, "user", "update_role", "only admins change roles")
	}

	role, ok := models.ParseRole(req.Role)
	if !ok {
		return nil, ErrUnknownRole
	}

	user, err := s.repo.User().UpdateRole(ctx, id, role)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.logger.Info("Role updated successfully", "user_id", id, "role", role)

	s.publishEvent(ctx, events.EventUserRoleChanged, map[string]interface{}{
		"user_id": id,
		"role":    string(role),
	})

	return &UserResponse{User: user}, nil
}

func (s *userService) EnsureFromIdentity(ctx context.Context, identity *models.User) (*models.User, error) {
	user, err := s.repo.User().EnsureFromIdentity(ctx, identity)
	if err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to ensure user from identity: %w", err)
	}

	return user, nil
}

func (s *userService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}

	event := events.NewEvent(eventType, data)
	if err := s.eventPublisher.Publish(ctx, "lms.users", event); err != nil {
		s.logger.Error("Failed to publish user event", "event_type", eventType, "error", err)
	}
}
