package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"task-manager/internal/domain"
	"task-manager/internal/service"
)

func (h *Handler) listTasks(c *gin.Context) {
	identity, ok := currentUser(c)
	if !ok {
		abortUnauthorized(c, "Access denied.")
		return
	}

	var filter domain.TaskFilter
	var errs []fieldError
	if raw := c.Query("status"); raw != "" {
		status, ferr := parseStatus(raw)
		if ferr != nil {
			errs = append(errs, *ferr)
		} else {
			filter.Status = &status
		}
	}
	if raw := c.Query("priority"); raw != "" {
		priority, ferr := parsePriority(raw)
		if ferr != nil {
			errs = append(errs, *ferr)
		} else {
			filter.Priority = &priority
		}
	}
	if len(errs) > 0 {
		respondValidationErrors(c, errs)
		return
	}

	tasks, err := h.tasks.List(c.Request.Context(), identity.ID, filter)
	if err != nil {
		h.serverError(c, "task listing", err)
		return
	}
	counts, err := h.tasks.StatusCounts(c.Request.Context(), identity.ID)
	if err != nil {
		h.serverError(c, "task listing", err)
		return
	}

	respondOK(c, http.StatusOK, "Tasks retrieved successfully", gin.H{
		"tasks": tasksToResponse(tasks),
		"stats": gin.H{
			"pending":     counts[domain.TaskStatusPending],
			"in-progress": counts[domain.TaskStatusInProgress],
			"completed":   counts[domain.TaskStatusCompleted],
		},
		"count": len(tasks),
	})
}

func (h *Handler) overdueTasks(c *gin.Context) {
	identity, ok := currentUser(c)
	if !ok {
		abortUnauthorized(c, "Access denied.")
		return
	}

	tasks, err := h.tasks.Overdue(c.Request.Context(), identity.ID)
	if err != nil {
		h.serverError(c, "overdue task listing", err)
		return
	}
	respondOK(c, http.StatusOK, "Overdue tasks retrieved successfully", gin.H{
		"tasks": tasksToResponse(tasks),
		"count": len(tasks),
	})
}

func (h *Handler) getTask(c *gin.Context) {
	identity, ok := currentUser(c)
	if !ok {
		abortUnauthorized(c, "Access denied.")
		return
	}
	id, ok := taskIDParam(c)
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), identity.ID, id)
	if err != nil {
		h.taskError(c, "task fetch", err)
		return
	}
	respondOK(c, http.StatusOK, "Task retrieved successfully", gin.H{"task": taskToResponse(*task)})
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
}

func (h *Handler) createTask(c *gin.Context) {
	identity, ok := currentUser(c)
	if !ok {
		abortUnauthorized(c, "Access denied.")
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	input := service.CreateTaskInput{Title: req.Title}
	var errs []fieldError
	if ferr := validateTitle(req.Title); ferr != nil {
		errs = append(errs, *ferr)
	}
	if req.Description != nil {
		if ferr := validateDescription(*req.Description); ferr != nil {
			errs = append(errs, *ferr)
		} else if *req.Description != "" {
			input.Description = req.Description
		}
	}
	if req.Status != nil {
		status, ferr := parseStatus(*req.Status)
		if ferr != nil {
			errs = append(errs, *ferr)
		} else {
			input.Status = status
		}
	}
	if req.Priority != nil {
		priority, ferr := parsePriority(*req.Priority)
		if ferr != nil {
			errs = append(errs, *ferr)
		} else {
			input.Priority = priority
		}
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			errs = append(errs, fieldError{Field: "due_date", Message: err.Error()})
		} else {
			input.DueDate = &due
		}
	}
	if len(errs) > 0 {
		respondValidationErrors(c, errs)
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), identity.ID, input)
	if err != nil {
		if errors.Is(err, domain.ErrDueDateInPast) {
			respondValidationErrors(c, []fieldError{{Field: "due_date", Message: "Due date cannot be in the past"}})
			return
		}
		h.serverError(c, "task creation", err)
		return
	}
	respondOK(c, http.StatusCreated, "Task created successfully", gin.H{"task": taskToResponse(*task)})
}

type updateTaskRequest struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Status      *string        `json:"status"`
	Priority    *string        `json:"priority"`
	DueDate     nullableString `json:"due_date"`
}

func (h *Handler) updateTask(c *gin.Context) {
	identity, ok := currentUser(c)
	if !ok {
		abortUnauthorized(c, "Access denied.")
		return
	}
	id, ok := taskIDParam(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	var update domain.TaskUpdate
	var errs []fieldError
	if req.Title != nil {
		if ferr := validateTitle(*req.Title); ferr != nil {
			errs = append(errs, *ferr)
		} else {
			update.Title = req.Title
		}
	}
	if req.Description != nil {
		if ferr := validateDescription(*req.Description); ferr != nil {
			errs = append(errs, *ferr)
		} else {
			update.Description = req.Description
		}
	}
	if req.Status != nil {
		status, ferr := parseStatus(*req.Status)
		if ferr != nil {
			errs = append(errs, *ferr)
		} else {
			update.Status = &status
		}
	}
	if req.Priority != nil {
		priority, ferr := parsePriority(*req.Priority)
		if ferr != nil {
			errs = append(errs, *ferr)
		} else {
			update.Priority = &priority
		}
	}
	if req.DueDate.Set {
		update.DueDateSet = true
		if req.DueDate.Value != nil && *req.DueDate.Value != "" {
			due, err := parseDueDate(*req.DueDate.Value)
			if err != nil {
				errs = append(errs, fieldError{Field: "due_date", Message: err.Error()})
			} else {
				update.DueDate = &due
			}
		}
	}
	if len(errs) > 0 {
		respondValidationErrors(c, errs)
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), identity.ID, id, update)
	if err != nil {
		if errors.Is(err, domain.ErrNoFieldsToUpdate) {
			respondError(c, http.StatusBadRequest, "No valid fields to update")
			return
		}
		h.taskError(c, "task update", err)
		return
	}
	respondOK(c, http.StatusOK, "Task updated successfully", gin.H{"task": taskToResponse(*task)})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateTaskStatus(c *gin.Context) {
	identity, ok := currentUser(c)
	if !ok {
		abortUnauthorized(c, "Access denied.")
		return
	}
	id, ok := taskIDParam(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status == "" {
		respondValidationErrors(c, []fieldError{{Field: "status", Message: "Status is required"}})
		return
	}
	status, ferr := parseStatus(req.Status)
	if ferr != nil {
		respondValidationErrors(c, []fieldError{*ferr})
		return
	}

	task, err := h.tasks.UpdateStatus(c.Request.Context(), identity.ID, id, status)
	if err != nil {
		h.taskError(c, "task status update", err)
		return
	}
	respondOK(c, http.StatusOK, "Task status updated successfully", gin.H{"task": taskToResponse(*task)})
}

func (h *Handler) deleteTask(c *gin.Context) {
	identity, ok := currentUser(c)
	if !ok {
		abortUnauthorized(c, "Access denied.")
		return
	}
	id, ok := taskIDParam(c)
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), identity.ID, id); err != nil {
		h.taskError(c, "task deletion", err)
		return
	}
	respondOK(c, http.StatusOK, "Task deleted successfully", nil)
}

func (h *Handler) taskStats(c *gin.Context) {
	identity, ok := currentUser(c)
	if !ok {
		abortUnauthorized(c, "Access denied.")
		return
	}

	stats, err := h.tasks.Stats(c.Request.Context(), identity.ID)
	if err != nil {
		h.serverError(c, "statistics fetch", err)
		return
	}
	respondOK(c, http.StatusOK, "Statistics retrieved successfully", statsToData(stats))
}

func taskIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondValidationErrors(c, []fieldError{{Field: "id", Message: "Task ID must be a positive integer"}})
		return 0, false
	}
	return id, true
}

func (h *Handler) taskError(c *gin.Context, during string, err error) {
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		respondError(c, http.StatusNotFound, "Task not found")
	case errors.Is(err, domain.ErrTaskForbidden):
		respondError(c, http.StatusForbidden, "You do not have permission to access this task")
	default:
		h.serverError(c, during, err)
	}
}
