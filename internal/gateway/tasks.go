package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"planner/internal/model"
)

type TaskFilter struct {
	Date   string
	Status model.TaskStatus
}

func (f TaskFilter) values() url.Values {
	q := url.Values{}
	if f.Date != "" {
		q.Set("date", f.Date)
	}
	if f.Status != "" {
		q.Set("status_filter", string(f.Status))
	}
	return q
}

func (c *Client) ListTasks(ctx context.Context, f TaskFilter) ([]model.Task, error) {
	return call[[]model.Task](ctx, c, request{
		op:       "ListTasks",
		method:   http.MethodGet,
		path:     "/tasks/",
		query:    f.values(),
		fallback: "Failed to fetch tasks",
	})
}

func (c *Client) GetTask(ctx context.Context, id int) (model.Task, error) {
	return call[model.Task](ctx, c, request{
		op:       "GetTask",
		method:   http.MethodGet,
		path:     "/tasks/" + strconv.Itoa(id),
		fallback: "Failed to fetch task",
	})
}

func (c *Client) CreateTask(ctx context.Context, req model.TaskCreate) (model.Task, error) {
	return call[model.Task](ctx, c, request{
		op:       "CreateTask",
		method:   http.MethodPost,
		path:     "/tasks/",
		body:     req,
		fallback: "Failed to create task",
	})
}

func (c *Client) UpdateTask(ctx context.Context, id int, req model.TaskUpdate) (model.Task, error) {
	return call[model.Task](ctx, c, request{
		op:       "UpdateTask",
		method:   http.MethodPatch,
		path:     "/tasks/" + strconv.Itoa(id),
		body:     req,
		fallback: "Failed to update task",
	})
}

func (c *Client) DeleteTask(ctx context.Context, id int) error {
	return c.do(ctx, request{
		op:       "DeleteTask",
		method:   http.MethodDelete,
		path:     "/tasks/" + strconv.Itoa(id),
		fallback: "Failed to delete task",
	}, nil)
}
