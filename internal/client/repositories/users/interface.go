// Package users persists the cached profile of the signed-in user. The
// table holds at most one row.
package users

import (
	"context"

	"github.com/agrisonic/agrisonic/internal/client/models"
)

type Repository interface {
	// Replace drops any stored row and inserts u.
	Replace(ctx context.Context, u *models.User) error
	// Current returns (nil, nil) when no row is stored.
	Current(ctx context.Context) (*models.User, error)
	Clear(ctx context.Context) error
}
