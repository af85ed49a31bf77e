package services

import (
	"context"
	"fmt"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/models"
	"github.com/harshithb3304/Learning-Management-System-sub001/internal/repositories"
)

// actorLookup resolves the acting user's stored row. Every operation
// authorizes against this row, never against token claims.
func actorLookup(ctx context.Context, repo repositories.Repository, actorID string) (*models.User, error) {
	actor, err := repo.User().GetByID(ctx, actorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve actor: %w", err)
	}
	return actor, nil
}

// pageOf converts limit/offset to a 1-indexed page number for responses
func pageOf(limit, offset int) int {
	if limit <= 0 {
		limit = 20
	}
	return (offset / limit) + 1
}

// sizeOf normalizes the page size for responses
func sizeOf(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
