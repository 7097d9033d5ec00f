package http

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"task-manager/internal/auth"
	"task-manager/internal/domain"
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

func passwordErrors(field, password string) []fieldError {
	var errs []fieldError
	for _, msg := range auth.ValidatePasswordStrength(password) {
		errs = append(errs, fieldError{Field: field, Message: msg})
	}
	return errs
}

func validateTitle(title string) *fieldError {
	title = strings.TrimSpace(title)
	if title == "" {
		return &fieldError{Field: "title", Message: "Title is required"}
	}
	if len(title) < 3 || len(title) > 200 {
		return &fieldError{Field: "title", Message: "Title must be between 3 and 200 characters"}
	}
	return nil
}

func validateDescription(description string) *fieldError {
	if len(description) > 1000 {
		return &fieldError{Field: "description", Message: "Description must not exceed 1000 characters"}
	}
	return nil
}

func parseStatus(s string) (domain.TaskStatus, *fieldError) {
	status := domain.TaskStatus(s)
	if !status.Valid() {
		return "", &fieldError{Field: "status", Message: "Status must be one of: pending, in-progress, completed"}
	}
	return status, nil
}

func parsePriority(s string) (domain.TaskPriority, *fieldError) {
	priority := domain.TaskPriority(s)
	if !priority.Valid() {
		return "", &fieldError{Field: "priority", Message: "Priority must be one of: low, medium, high"}
	}
	return priority, nil
}

// parseDueDate accepts a plain date or a full RFC 3339 timestamp and
// normalizes to midnight UTC of that day.
func parseDueDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("due date must be a valid date in YYYY-MM-DD format")
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// nullableString distinguishes an absent JSON field from an explicit
// null, which a plain *string cannot. Used where null means "clear".
type nullableString struct {
	Set   bool
	Value *string
}

func (n *nullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}
