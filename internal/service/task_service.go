package service

import (
	"context"
	"time"

	"task-manager/internal/domain"
	"task-manager/internal/repository"
)

// CreateTaskInput carries the fields accepted when creating a task.
// Status and priority fall back to their defaults when empty.
type CreateTaskInput struct {
	Title       string
	Description *string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	DueDate     *time.Time
}

// TaskService coordinates task operations and enforces ownership: every
// single-task call checks the record belongs to the acting user before
// proceeding.
type TaskService interface {
	Create(ctx context.Context, userID int64, input CreateTaskInput) (*domain.Task, error)
	Get(ctx context.Context, userID, id int64) (*domain.Task, error)
	List(ctx context.Context, userID int64, filter domain.TaskFilter) ([]domain.Task, error)
	Update(ctx context.Context, userID, id int64, update domain.TaskUpdate) (*domain.Task, error)
	UpdateStatus(ctx context.Context, userID, id int64, status domain.TaskStatus) (*domain.Task, error)
	Delete(ctx context.Context, userID, id int64) error
	Overdue(ctx context.Context, userID int64) ([]domain.Task, error)
	StatusCounts(ctx context.Context, userID int64) (map[domain.TaskStatus]int64, error)
	Stats(ctx context.Context, userID int64) (*domain.TaskStats, error)
}

type taskService struct {
	tasks repository.TaskRepository
	// now is swappable in tests
	now func() time.Time
}

func NewTaskService(tasks repository.TaskRepository) TaskService {
	return &taskService{
		tasks: tasks,
		now:   time.Now,
	}
}

func (s *taskService) Create(ctx context.Context, userID int64, input CreateTaskInput) (*domain.Task, error) {
	task := &domain.Task{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
	}
	if task.Status == "" {
		task.Status = domain.TaskStatusPending
	}
	if task.Priority == "" {
		task.Priority = domain.TaskPriorityMedium
	}
	if task.DueDate != nil && task.DueDate.Before(s.startOfToday()) {
		return nil, domain.ErrDueDateInPast
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if _, err := s.tasks.Create(storeCtx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Get(ctx context.Context, userID, id int64) (*domain.Task, error) {
	return s.getOwned(ctx, userID, id)
}

func (s *taskService) List(ctx context.Context, userID int64, filter domain.TaskFilter) ([]domain.Task, error) {
	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return s.tasks.ListByUser(storeCtx, userID, filter)
}

func (s *taskService) Update(ctx context.Context, userID, id int64, update domain.TaskUpdate) (*domain.Task, error) {
	if update.Empty() {
		return nil, domain.ErrNoFieldsToUpdate
	}

	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := s.tasks.Update(storeCtx, id, update); err != nil {
		return nil, err
	}
	return s.getOwned(ctx, userID, id)
}

func (s *taskService) UpdateStatus(ctx context.Context, userID, id int64, status domain.TaskStatus) (*domain.Task, error) {
	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := s.tasks.UpdateStatus(storeCtx, id, status); err != nil {
		return nil, err
	}
	return s.getOwned(ctx, userID, id)
}

func (s *taskService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return err
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return s.tasks.Delete(storeCtx, id)
}

func (s *taskService) Overdue(ctx context.Context, userID int64) ([]domain.Task, error) {
	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return s.tasks.ListOverdue(storeCtx, userID, s.startOfToday())
}

func (s *taskService) StatusCounts(ctx context.Context, userID int64) (map[domain.TaskStatus]int64, error) {
	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return s.tasks.CountByStatus(storeCtx, userID)
}

func (s *taskService) Stats(ctx context.Context, userID int64) (*domain.TaskStats, error) {
	counts, err := s.StatusCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	overdue, err := s.Overdue(ctx, userID)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	return &domain.TaskStats{
		Total:    total,
		ByStatus: counts,
		Overdue:  int64(len(overdue)),
	}, nil
}

func (s *taskService) getOwned(ctx context.Context, userID, id int64) (*domain.Task, error) {
	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	task, err := s.tasks.GetByID(storeCtx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, domain.ErrTaskForbidden
	}
	return task, nil
}

func (s *taskService) startOfToday() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
