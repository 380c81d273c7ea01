package gateway

import (
	"context"
	"net/http"
	"net/url"

	"planner/internal/model"
)

type PlanRange struct {
	StartDate string
	EndDate   string
}

func (c *Client) ListPlans(ctx context.Context, r PlanRange) ([]model.Plan, error) {
	q := url.Values{}
	if r.StartDate != "" {
		q.Set("start_date", r.StartDate)
	}
	if r.EndDate != "" {
		q.Set("end_date", r.EndDate)
	}
	return call[[]model.Plan](ctx, c, request{
		op:       "ListPlans",
		method:   http.MethodGet,
		path:     "/plans/",
		query:    q,
		fallback: "Failed to fetch plans",
	})
}

func (c *Client) GetPlan(ctx context.Context, date string) (model.Plan, error) {
	return call[model.Plan](ctx, c, request{
		op:       "GetPlan",
		method:   http.MethodGet,
		path:     "/plans/" + url.PathEscape(date),
		fallback: "Failed to fetch plan",
	})
}

func (c *Client) CreatePlan(ctx context.Context, req model.PlanCreate) (model.Plan, error) {
	return call[model.Plan](ctx, c, request{
		op:       "CreatePlan",
		method:   http.MethodPost,
		path:     "/plans/",
		body:     req,
		fallback: "Failed to create plan",
	})
}

func (c *Client) UpdatePlan(ctx context.Context, date string, req model.PlanUpdate) (model.Plan, error) {
	return call[model.Plan](ctx, c, request{
		op:       "UpdatePlan",
		method:   http.MethodPatch,
		path:     "/plans/" + url.PathEscape(date),
		body:     req,
		fallback: "Failed to update plan",
	})
}
