package auth

import (
	"context"

	"posrail/internal/core/id"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	GetByID(ctx context.Context, userID id.ID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Exists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]*User, error)
	Delete(ctx context.Context, userID id.ID) error
}
