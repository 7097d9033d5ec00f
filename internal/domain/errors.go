package domain

import "errors"

var (
	// ErrUserNotFound is returned when a user id or email resolves to nothing.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering or changing to an email that already exists.
	ErrEmailTaken = errors.New("email already exists")
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTaskNotFound is returned when a task id resolves to nothing.
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskForbidden is returned when a task exists but belongs to another user.
	ErrTaskForbidden = errors.New("task belongs to another user")
	// ErrNoFieldsToUpdate is returned when a partial update carries no recognized field.
	ErrNoFieldsToUpdate = errors.New("no valid fields to update")
	// ErrDueDateInPast rejects creating a task that is overdue from the start.
	ErrDueDateInPast = errors.New("due date cannot be in the past")
)
