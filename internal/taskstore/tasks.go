package taskstore

import (
	"context"
	"fmt"
	"net/http"

	"taskdesk/internal/models"
)

func taskPath(id int64) string { return fmt.Sprintf("/tasks/%d", id) }

// ListTasks fetches the team-wide list. Only the fields set in criteria are
// sent as query parameters.
func (c *Client) ListTasks(ctx context.Context, criteria models.FilterCriteria) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.doJSON(ctx, "list tasks", http.MethodGet, "/tasks", criteria.Values(), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListMyTasks fetches the tasks assigned to or created by the caller.
func (c *Client) ListMyTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.doJSON(ctx, "list my tasks", http.MethodGet, "/tasks/my-tasks", nil, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id int64) (models.Task, error) {
	var task models.Task
	err := c.doJSON(ctx, "get task", http.MethodGet, taskPath(id), nil, nil, &task)
	return task, err
}

// CreateTask validates draft and creates the task. An invalid draft returns a
// *models.ValidationError without any network call.
func (c *Client) CreateTask(ctx context.Context, draft models.TaskDraft) (models.Task, error) {
	var task models.Task
	if err := draft.Validate(); err != nil {
		return task, err
	}
	err := c.doJSON(ctx, "create task", http.MethodPost, "/tasks", nil, draft, &task)
	return task, err
}

// UpdateTask validates draft and replaces the editable fields of task id.
func (c *Client) UpdateTask(ctx context.Context, id int64, draft models.TaskDraft) (models.Task, error) {
	var task models.Task
	if err := draft.Validate(); err != nil {
		return task, err
	}
	err := c.doJSON(ctx, "update task", http.MethodPut, taskPath(id), nil, draft, &task)
	return task, err
}

// DeleteTask removes a task with its attachments. Callers confirm first.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.doJSON(ctx, "delete task", http.MethodDelete, taskPath(id), nil, nil, nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.doJSON(ctx, "list users", http.MethodGet, "/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// DashboardStats fetches collection totals. A non-zero assignee narrows them.
func (c *Client) DashboardStats(ctx context.Context, assignee int64) (models.DashboardStats, error) {
	var stats models.DashboardStats
	criteria := models.FilterCriteria{Assignee: assignee}
	err := c.doJSON(ctx, "dashboard stats", http.MethodGet, "/dashboard/stats", criteria.Values(), nil, &stats)
	return stats, err
}
