// Package auth_repo provides PostgreSQL implementations for auth repositories.
package auth_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"posrail/internal/core/apperror"
	"posrail/internal/core/id"
	"posrail/internal/domain/auth"
	"posrail/internal/infrastructure/storage/postgres"
)

const usersTable = "sys_users"

var userColumns = []string{
	"id", "email", "name", "password_hash", "role", "is_active",
	"last_login_at", "failed_login_attempts", "locked_until",
	"created_at", "updated_at",
}

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txManager *postgres.TxManager) *UserRepo {
	return &UserRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ auth.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(userColumns...).From(usersTable)
}

// Create inserts a new user.
func (r *UserRepo) Create(ctx context.Context, u *auth.User) error {
	q := r.builder.Insert(usersTable).
		Columns(userColumns...).
		Values(
			u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.IsActive,
			u.LastLoginAt, u.FailedLoginAttempts, u.LockedUntil,
			u.CreatedAt, u.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.TranslateError(err, "user", u.ID)
	}
	return nil
}

// Update persists user changes.
func (r *UserRepo) Update(ctx context.Context, u *auth.User) error {
	q := r.builder.Update(usersTable).
		Set("email", u.Email).
		Set("name", u.Name).
		Set("password_hash", u.PasswordHash).
		Set("role", u.Role).
		Set("is_active", u.IsActive).
		Set("last_login_at", u.LastLoginAt).
		Set("failed_login_attempts", u.FailedLoginAttempts).
		Set("locked_until", u.LockedUntil).
		Set("updated_at", u.UpdatedAt).
		Where(squirrel.Eq{"id": u.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.TranslateError(err, "user", u.ID)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("user", u.ID)
	}
	return nil
}

// GetByID retrieves a user.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": userID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var u auth.User
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &u, sql, args...); err != nil {
		return nil, postgres.TranslateError(err, "user", userID)
	}
	return &u, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	q := r.baseSelect().Where(squirrel.Eq{"email": email}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var u auth.User
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &u, sql, args...); err != nil {
		return nil, postgres.TranslateError(err, "user", email)
	}
	return &u, nil
}

// Exists reports whether a user with the email exists.
func (r *UserRepo) Exists(ctx context.Context, email string) (bool, error) {
	q := r.builder.Select("COUNT(*)").
		From(usersTable).
		Where(squirrel.Eq{"email": email})

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build count: %w", err)
	}

	var count int
	row := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...)
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count > 0, nil
}

// List retrieves all users, newest first.
func (r *UserRepo) List(ctx context.Context) ([]*auth.User, error) {
	q := r.baseSelect().OrderBy("created_at DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var items []*auth.User
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	return items, nil
}

// Delete removes a user.
func (r *UserRepo) Delete(ctx context.Context, userID id.ID) error {
	q := r.builder.Delete(usersTable).Where(squirrel.Eq{"id": userID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.TranslateError(err, "user", userID)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("user", userID)
	}
	return nil
}
