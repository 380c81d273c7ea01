package model

import (
	"encoding/json"
	"time"
)

// Read models served by the history, gamification and payments endpoints.
// The client only relays them.

type TaskHistoryEntry struct {
	ID        int             `json:"id"`
	TaskID    int             `json:"task_id"`
	UserID    int             `json:"user_id"`
	EventType string          `json:"event_type"`
	OldStatus *string         `json:"old_status"`
	NewStatus *string         `json:"new_status"`
	Changes   json.RawMessage `json:"changes,omitempty"`
	Notes     *string         `json:"notes"`
	CreatedAt time.Time       `json:"created_at"`
}

type DailyStats struct {
	ID                     int      `json:"id"`
	UserID                 int      `json:"user_id"`
	Date                   string   `json:"date"`
	TasksCreated           int      `json:"tasks_created"`
	TasksCompleted         int      `json:"tasks_completed"`
	TasksPostponed         int      `json:"tasks_postponed"`
	FocusSessionsCount     int      `json:"focus_sessions_count"`
	TotalFocusMinutes      int      `json:"total_focus_minutes"`
	CompletedFocusSessions int      `json:"completed_focus_sessions"`
	XPEarned               int      `json:"xp_earned"`
	AchievementsUnlocked   int      `json:"achievements_unlocked"`
	CompletionRate         float64  `json:"completion_rate"`
	AverageFlowRating      *float64 `json:"average_flow_rating"`
	DailyGoalMet           int      `json:"daily_goal_met"`
}

type ActivityDay struct {
	Date           string `json:"date"`
	TasksCompleted int    `json:"tasks_completed"`
	FocusMinutes   int    `json:"focus_minutes"`
	XPEarned       int    `json:"xp_earned"`
	HasActivity    bool   `json:"has_activity"`
}

type StreakData struct {
	CurrentStreak    int           `json:"current_streak"`
	LongestStreak    int           `json:"longest_streak"`
	LastActivityDate *string       `json:"last_activity_date"`
	ActivityCalendar []ActivityDay `json:"activity_calendar"`
}

type UserStats struct {
	UserID         int `json:"user_id"`
	TotalXP        int `json:"total_xp"`
	Level          int `json:"level"`
	CurrentStreak  int `json:"current_streak"`
	LongestStreak  int `json:"longest_streak"`
	TasksCompleted int `json:"tasks_completed"`
}

type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}
