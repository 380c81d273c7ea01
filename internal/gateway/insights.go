package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"planner/internal/model"
)

// HistoryQuery filters the history endpoints. Zero fields are omitted.
type HistoryQuery struct {
	TaskID    int
	StartDate string
	EndDate   string
	Limit     int
}

func (q HistoryQuery) values() url.Values {
	v := url.Values{}
	if q.TaskID > 0 {
		v.Set("task_id", strconv.Itoa(q.TaskID))
	}
	if q.StartDate != "" {
		v.Set("start_date", q.StartDate)
	}
	if q.EndDate != "" {
		v.Set("end_date", q.EndDate)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func (c *Client) TaskHistory(ctx context.Context, q HistoryQuery) ([]model.TaskHistoryEntry, error) {
	return call[[]model.TaskHistoryEntry](ctx, c, request{
		op:       "TaskHistory",
		method:   http.MethodGet,
		path:     "/history/tasks",
		query:    q.values(),
		fallback: "Failed to fetch task history",
	})
}

func (c *Client) DailyStats(ctx context.Context, q HistoryQuery) ([]model.DailyStats, error) {
	q.TaskID = 0
	return call[[]model.DailyStats](ctx, c, request{
		op:       "DailyStats",
		method:   http.MethodGet,
		path:     "/history/daily-stats",
		query:    q.values(),
		fallback: "Failed to fetch daily stats",
	})
}

func (c *Client) Streak(ctx context.Context) (model.StreakData, error) {
	return call[model.StreakData](ctx, c, request{
		op:       "Streak",
		method:   http.MethodGet,
		path:     "/history/streak",
		fallback: "Failed to fetch streak data",
	})
}

func (c *Client) GamificationStats(ctx context.Context) (model.UserStats, error) {
	return call[model.UserStats](ctx, c, request{
		op:       "GamificationStats",
		method:   http.MethodGet,
		path:     "/gamification/stats",
		fallback: "Failed to fetch stats",
	})
}

// CreateCheckoutSession only relays the payment provider's session; checkout itself is out of scope.
func (c *Client) CreateCheckoutSession(ctx context.Context, planID string) (model.CheckoutSession, error) {
	return call[model.CheckoutSession](ctx, c, request{
		op:       "CreateCheckoutSession",
		method:   http.MethodPost,
		path:     "/payments/create-checkout-session",
		query:    url.Values{"plan_id": []string{planID}},
		fallback: "Failed to start checkout",
	})
}
