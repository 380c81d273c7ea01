package model

import "time"

type TaskStatus string

const (
	StatusNotStarted TaskStatus = "not_started"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
	StatusPostponed  TaskStatus = "postponed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusDone, StatusPostponed:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Task struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	Date        *string      `json:"date,omitempty"`
	UserID      int          `json:"user_id"`
	GroupID     *int         `json:"group_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Subtasks    []Subtask    `json:"subtasks"`
}

// InGroup reports whether the task belongs to the given group.
func (t Task) InGroup(groupID int) bool {
	return t.GroupID != nil && *t.GroupID == groupID
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	c := t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	if t.Date != nil {
		d := *t.Date
		c.Date = &d
	}
	if t.GroupID != nil {
		g := *t.GroupID
		c.GroupID = &g
	}
	if t.Subtasks != nil {
		c.Subtasks = append([]Subtask(nil), t.Subtasks...)
	}
	return c
}

type Subtask struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	IsDone    bool      `json:"is_done"`
	Order     int       `json:"order"`
	TaskID    int       `json:"task_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SubtaskCreate struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

type TaskCreate struct {
	Name        string          `json:"name" binding:"required"`
	Description *string         `json:"description,omitempty"`
	Status      TaskStatus      `json:"status,omitempty"`
	Priority    TaskPriority    `json:"priority,omitempty"`
	Date        *string         `json:"date,omitempty"`
	GroupID     *int            `json:"group_id,omitempty"`
	Subtasks    []SubtaskCreate `json:"subtasks,omitempty"`
}

// TaskUpdate is a partial patch; nil fields are left untouched.
type TaskUpdate struct {
	Name        *string       `json:"name,omitempty"`
	Description *string       `json:"description,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	Date        *string       `json:"date,omitempty"`
	GroupID     *int          `json:"group_id,omitempty"`
}

func (u TaskUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Status == nil &&
		u.Priority == nil && u.Date == nil && u.GroupID == nil
}

// Apply returns t with the patch applied.
func (u TaskUpdate) Apply(t Task) Task {
	out := t.Clone()
	if u.Name != nil {
		out.Name = *u.Name
	}
	if u.Description != nil {
		d := *u.Description
		out.Description = &d
	}
	if u.Status != nil {
		out.Status = *u.Status
	}
	if u.Priority != nil {
		out.Priority = *u.Priority
	}
	if u.Date != nil {
		d := *u.Date
		out.Date = &d
	}
	if u.GroupID != nil {
		g := *u.GroupID
		out.GroupID = &g
	}
	return out
}

// CompletionPercent mirrors the dashboard's rounding: 0 for an empty set.
func CompletionPercent(total, done int) int {
	if total <= 0 {
		return 0
	}
	return int(float64(done)/float64(total)*100 + 0.5)
}
