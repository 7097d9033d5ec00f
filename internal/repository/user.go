package repository

import (
	"context"

	"task-manager/internal/domain"
)

// UserRepository defines persistence operations for User entities.
// Implementations return domain.ErrUserNotFound for a missing row and
// domain.ErrEmailTaken for a unique constraint violation.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateEmail(ctx context.Context, id int64, email string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
}
