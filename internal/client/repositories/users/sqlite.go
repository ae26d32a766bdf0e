package users

import (
	"context"
	"fmt"

	"github.com/agrisonic/agrisonic/internal/client/models"
	"github.com/agrisonic/agrisonic/internal/dbx"
	"github.com/jmoiron/sqlx"
)

const columns = `id, email, name, username, phone, address, farm_size, crop_types,
	profile_picture_url, is_verified, is_admin, created_at, updated_at`

const insertUser = `INSERT INTO users (` + columns + `) VALUES (
	:id, :email, :name, :username, :phone, :address, :farm_size, :crop_types,
	:profile_picture_url, :is_verified, :is_admin, :created_at, :updated_at)`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Replace is a delete followed by an insert. Callers that need both
// statements applied together run it on a transaction.
func (r *SQLiteRepository) Replace(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("failed to replace user: nil user")
	}

	query, args, err := sqlx.Named(insertUser, u)
	if err != nil {
		return fmt.Errorf("failed to bind user %s: %w", u.ID, err)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert user %s: %w", u.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Current(ctx context.Context) (*models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM users LIMIT 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	defer rows.Close()

	var found []models.User
	if err := sqlx.StructScan(rows, &found); err != nil {
		return nil, fmt.Errorf("failed to scan user row: %w", err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}
	return nil
}
