package repository

import (
	"context"
	"time"

	"task-manager/internal/domain"
)

// TaskRepository exposes persistence operations for Task records.
// Implementations return domain.ErrTaskNotFound for a missing row.
type TaskRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, task *domain.Task) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	ListByUser(ctx context.Context, userID int64, filter domain.TaskFilter) ([]domain.Task, error)
	Update(ctx context.Context, id int64, update domain.TaskUpdate) error
	UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus) error
	Delete(ctx context.Context, id int64) error
	ListOverdue(ctx context.Context, userID int64, before time.Time) ([]domain.Task, error)
	CountByStatus(ctx context.Context, userID int64) (map[domain.TaskStatus]int64, error)
}
