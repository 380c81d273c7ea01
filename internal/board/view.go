// Package board derives the kanban view from the task and group collections
// and tracks drag-and-drop gestures over it.
package board

import (
	"sort"

	"planner/internal/model"
)

type EmptyState string

const (
	NoBoards EmptyState = "no_boards"
	NoGroups EmptyState = "no_groups"
	Ready    EmptyState = "ready"
)

type Column struct {
	Group      model.Group  `json:"group"`
	Tasks      []model.Task `json:"tasks"`
	Total      int          `json:"total"`
	Done       int          `json:"done"`
	Completion int          `json:"completion"`
}

type View struct {
	Boards     []model.Board `json:"boards"`
	Current    *model.Board  `json:"current"`
	Columns    []Column      `json:"columns"`
	Unassigned int           `json:"unassigned"`
	EmptyState EmptyState    `json:"empty_state"`
}

// GroupTasks partitions tasks by group id. Every group gets an entry, tasks
// keep their source order and tasks outside the given groups are left out.
func GroupTasks(tasks []model.Task, groups []model.Group) map[int][]model.Task {
	out := make(map[int][]model.Task, len(groups))
	for _, g := range groups {
		out[g.ID] = []model.Task{}
	}
	for _, t := range tasks {
		if t.GroupID == nil {
			continue
		}
		if bucket, ok := out[*t.GroupID]; ok {
			out[*t.GroupID] = append(bucket, t.Clone())
		}
	}
	return out
}

// OrderedGroups sorts by Order, then id.
func OrderedGroups(groups []model.Group) []model.Group {
	out := append([]model.Group(nil), groups...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// BuildView is recomputed from scratch on every call.
func BuildView(boards []model.Board, current *model.Board, tasks []model.Task) View {
	v := View{Boards: boards, Columns: []Column{}}
	if v.Boards == nil {
		v.Boards = []model.Board{}
	}
	if len(boards) == 0 || current == nil {
		v.EmptyState = NoBoards
		return v
	}
	cur := current.Clone()
	v.Current = &cur
	if len(cur.Groups) == 0 {
		v.EmptyState = NoGroups
		return v
	}

	groups := OrderedGroups(cur.Groups)
	byGroup := GroupTasks(tasks, groups)
	placed := 0
	for _, g := range groups {
		col := Column{Group: g, Tasks: byGroup[g.ID]}
		col.Total = len(col.Tasks)
		for _, t := range col.Tasks {
			if t.Status == model.StatusDone {
				col.Done++
			}
		}
		col.Completion = model.CompletionPercent(col.Total, col.Done)
		placed += col.Total
		v.Columns = append(v.Columns, col)
	}
	v.Unassigned = len(tasks) - placed
	v.EmptyState = Ready
	return v
}
