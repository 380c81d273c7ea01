package board

import (
	"errors"
	"fmt"
	"sync"

	"planner/internal/model"
)

type Mode int

const (
	Idle Mode = iota
	DraggingTask
	DraggingColumn
)

func (m Mode) String() string {
	switch m {
	case DraggingTask:
		return "dragging-task"
	case DraggingColumn:
		return "dragging-column"
	}
	return "idle"
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	for _, candidate := range []Mode{Idle, DraggingTask, DraggingColumn} {
		if candidate.String() == string(text) {
			*m = candidate
			return nil
		}
	}
	return fmt.Errorf("board: unknown drag mode %q", text)
}

var (
	ErrAlreadyDragging = errors.New("board: a drag is already in progress")
	ErrNotDragging     = errors.New("board: no drag in progress")
	ErrUnknownTarget   = errors.New("board: drop target not on the board")
)

type TargetKind string

const (
	TargetColumn TargetKind = "column"
	TargetTask   TargetKind = "task"
)

// Target is what the pointer is over: a column, or a task inside a column.
type Target struct {
	Kind    TargetKind `json:"kind" binding:"required,oneof=column task"`
	GroupID int        `json:"group_id"`
	TaskID  int        `json:"task_id"`
}

// Snapshot is the authoritative board content a target is resolved against.
type Snapshot struct {
	Tasks  []model.Task
	Groups []model.Group
}

func (s Snapshot) task(id int) (model.Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func (s Snapshot) hasGroup(id int) bool {
	for _, g := range s.Groups {
		if g.ID == id {
			return true
		}
	}
	return false
}

// groupOf resolves a target to the column it belongs to.
func (s Snapshot) groupOf(t Target) (int, error) {
	switch t.Kind {
	case TargetColumn:
		if !s.hasGroup(t.GroupID) {
			return 0, ErrUnknownTarget
		}
		return t.GroupID, nil
	case TargetTask:
		task, ok := s.task(t.TaskID)
		if !ok || task.GroupID == nil || !s.hasGroup(*task.GroupID) {
			return 0, ErrUnknownTarget
		}
		return *task.GroupID, nil
	}
	return 0, ErrUnknownTarget
}

type DragState struct {
	Mode      Mode         `json:"mode"`
	Task      *model.Task  `json:"task,omitempty"`
	Group     *model.Group `json:"group,omitempty"`
	Candidate *int         `json:"candidate_group_id,omitempty"`
}

// Drop is the outcome of a finished gesture. It is computed only; applying it
// is up to the caller.
type Drop struct {
	Mode        Mode  `json:"mode"`
	Cancelled   bool  `json:"cancelled"`
	TaskID      int   `json:"task_id,omitempty"`
	FromGroupID *int  `json:"from_group_id,omitempty"`
	ToGroupID   int   `json:"to_group_id,omitempty"`
	Moved       bool  `json:"moved"`
	GroupID     int   `json:"group_id,omitempty"`
	GroupOrder  []int `json:"group_order,omitempty"`
}

// Tracker is the drag state machine: idle -> dragging-task | dragging-column -> idle.
type Tracker struct {
	mu    sync.Mutex
	state DragState
}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) State() DragState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Tracker) StartTask(task model.Task) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Mode != Idle {
		return ErrAlreadyDragging
	}
	c := task.Clone()
	t.state = DragState{Mode: DraggingTask, Task: &c}
	return nil
}

func (t *Tracker) StartColumn(group model.Group) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Mode != Idle {
		return ErrAlreadyDragging
	}
	g := group
	t.state = DragState{Mode: DraggingColumn, Group: &g}
	return nil
}

// Over records the candidate destination. Board content is not touched.
func (t *Tracker) Over(target Target, snap Snapshot) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Mode == Idle {
		return 0, ErrNotDragging
	}
	groupID, err := snap.groupOf(target)
	if err != nil {
		t.state.Candidate = nil
		return 0, err
	}
	t.state.Candidate = &groupID
	return groupID, nil
}

// End finishes the gesture and returns the computed drop. A nil target means
// the item was released outside any column. The tracker is idle afterwards,
// whatever the outcome.
func (t *Tracker) End(target *Target, snap Snapshot) (Drop, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state := t.state
	t.state = DragState{}

	switch state.Mode {
	case DraggingTask:
		drop := Drop{Mode: DraggingTask, TaskID: state.Task.ID}
		if state.Task.GroupID != nil {
			from := *state.Task.GroupID
			drop.FromGroupID = &from
		}
		if target == nil {
			drop.Cancelled = true
			return drop, nil
		}
		to, err := snap.groupOf(*target)
		if err != nil {
			drop.Cancelled = true
			return drop, err
		}
		drop.ToGroupID = to
		drop.Moved = drop.FromGroupID == nil || *drop.FromGroupID != to
		return drop, nil

	case DraggingColumn:
		drop := Drop{Mode: DraggingColumn, GroupID: state.Group.ID}
		ordered := OrderedGroups(snap.Groups)
		if target == nil {
			drop.Cancelled = true
			return drop, nil
		}
		to, err := snap.groupOf(*target)
		if err != nil {
			drop.Cancelled = true
			return drop, err
		}
		drop.GroupOrder = moveGroup(ordered, state.Group.ID, to)
		drop.Moved = to != state.Group.ID
		return drop, nil
	}
	return Drop{}, ErrNotDragging
}

func (t *Tracker) Cancel() {
	t.mu.Lock()
	t.state = DragState{}
	t.mu.Unlock()
}

// moveGroup returns group ids with dragged moved into the slot of over.
func moveGroup(groups []model.Group, dragged, over int) []int {
	ids := make([]int, 0, len(groups))
	from, to := -1, -1
	for i, g := range groups {
		ids = append(ids, g.ID)
		if g.ID == dragged {
			from = i
		}
		if g.ID == over {
			to = i
		}
	}
	if from < 0 || to < 0 || from == to {
		return ids
	}
	id := ids[from]
	ids = append(ids[:from], ids[from+1:]...)
	ids = append(ids[:to], append([]int{id}, ids[to:]...)...)
	return ids
}
