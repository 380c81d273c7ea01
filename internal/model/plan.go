package model

import "time"

const HoursPerDay = 24.0

// Plan is the per-day allocation of fixed hours.
type Plan struct {
	ID          int       `json:"id"`
	Date        string    `json:"date"`
	SleepTime   float64   `json:"sleep_time"`
	CommuteTime float64   `json:"commute_time"`
	WorkTime    float64   `json:"work_time"`
	UserID      int       `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p Plan) BusyHours() float64 {
	return p.SleepTime + p.CommuteTime + p.WorkTime
}

// FreeHours may be negative when the day is overbooked.
func (p Plan) FreeHours() float64 {
	return HoursPerDay - p.BusyHours()
}

func (p Plan) Overbooked() bool {
	return p.FreeHours() < 0
}

type PlanCreate struct {
	Date        string   `json:"date" binding:"required"`
	SleepTime   *float64 `json:"sleep_time,omitempty"`
	CommuteTime *float64 `json:"commute_time,omitempty"`
	WorkTime    *float64 `json:"work_time,omitempty"`
}

type PlanUpdate struct {
	SleepTime   *float64 `json:"sleep_time,omitempty"`
	CommuteTime *float64 `json:"commute_time,omitempty"`
	WorkTime    *float64 `json:"work_time,omitempty"`
}

// DateLayout is the wire format of plan and task dates.
const DateLayout = "2006-01-02"
