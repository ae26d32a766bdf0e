package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// User is the authenticated user's profile as returned by the API and
// mirrored in the local users table.
type User struct {
	ID                string    `json:"id" db:"id"`
	Email             string    `json:"email" db:"email"`
	Name              string    `json:"name" db:"name"`
	Username          *string   `json:"username,omitempty" db:"username"`
	Phone             *string   `json:"phone,omitempty" db:"phone"`
	Address           *string   `json:"address,omitempty" db:"address"`
	FarmSize          *float64  `json:"farm_size,omitempty" db:"farm_size"`
	CropTypes         CropTypes `json:"crop_types,omitempty" db:"crop_types"`
	ProfilePictureURL *string   `json:"profile_picture_url,omitempty" db:"profile_picture_url"`
	IsVerified        bool      `json:"is_verified" db:"is_verified"`
	IsAdmin           bool      `json:"is_admin" db:"is_admin"`
	CreatedAt         string    `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt         string    `json:"updated_at,omitempty" db:"updated_at"`
}

// CropTypes is stored as a JSON array in a TEXT column. A nil slice is NULL.
type CropTypes []string

// Value implements driver.Valuer.
func (c CropTypes) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(c))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (c *CropTypes) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*c = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("crop_types: unsupported type %T", src)
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("crop_types: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*c = out
	return nil
}
