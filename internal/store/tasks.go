package store

import (
	"context"
	"time"

	"planner/internal/gateway"
	"planner/internal/model"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type TransitionKind string

const (
	KindUpdate   TransitionKind = "update"
	KindComplete TransitionKind = "complete"
	KindMove     TransitionKind = "move"
)

// Transition is a provisional task change waiting for the server. Visible
// tasks are the confirmed ones with every pending patch newer than the last
// commit applied in order.
type Transition struct {
	ID        uuid.UUID        `json:"id"`
	TaskID    int              `json:"task_id"`
	Kind      TransitionKind   `json:"kind"`
	Patch     model.TaskUpdate `json:"patch"`
	StartedAt time.Time        `json:"started_at"`
	rev       uint64
}

// Tasks returns the visible collection in fetch order.
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibleLocked()
}

func (s *Store) Task(id int) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.visibleLocked() {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// Pending lists the transitions still in flight, oldest first.
func (s *Store) Pending() []Transition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Transition, 0, len(s.pending))
	for _, tr := range s.pending {
		out = append(out, *tr)
	}
	return out
}

func (s *Store) visibleLocked() []model.Task {
	out := make([]model.Task, len(s.tasks))
	index := make(map[int]int, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
		index[t.ID] = i
	}
	for _, tr := range s.pending {
		// a newer transition already committed over this one
		if tr.rev <= s.baseRev[tr.TaskID] {
			continue
		}
		if i, ok := index[tr.TaskID]; ok {
			out[i] = tr.Patch.Apply(out[i])
		}
	}
	return out
}

func (s *Store) baseIndexLocked(id int) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// FetchTasks replaces the confirmed collection. Tasks confirmed locally after
// the fetch started keep their local version.
func (s *Store) FetchTasks(ctx context.Context, f gateway.TaskFilter) error {
	s.mu.Lock()
	gen, prev := s.tasksSlice.begin()
	s.taskFilter = f
	since := s.seq
	s.mu.Unlock()

	tasks, err := s.api.ListTasks(ctx, f)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.tasksSlice.settle(ctx, gen, prev, err) {
		if err == nil {
			err = ctx.Err()
		}
		return err
	}

	fresh := make([]model.Task, 0, len(tasks))
	seen := make(map[int]bool, len(tasks))
	for _, t := range tasks {
		if s.deletedAt[t.ID] > since {
			continue
		}
		seen[t.ID] = true
		if s.stamp[t.ID] > since {
			if i := s.baseIndexLocked(t.ID); i >= 0 {
				fresh = append(fresh, s.tasks[i])
				continue
			}
		}
		fresh = append(fresh, t)
	}
	for _, t := range s.tasks {
		if !seen[t.ID] && s.stamp[t.ID] > since {
			fresh = append(fresh, t)
		}
	}
	s.tasks = fresh
	s.logger.WithFields(log.Fields{"count": len(fresh), "pending": len(s.pending)}).Debug("tasks fetched")
	return nil
}

func (s *Store) CreateTask(ctx context.Context, req model.TaskCreate) (model.Task, error) {
	epoch := s.begin()
	task, err := s.api.CreateTask(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.landedLocked(ctx, epoch) {
		if err == nil {
			err = ctx.Err()
		}
		return task, err
	}
	if err != nil {
		s.failLocked("Failed to create task", err, log.Fields{"name": req.Name})
		return model.Task{}, err
	}
	s.seq++
	s.stamp[task.ID] = s.seq
	s.tasks = append(s.tasks, task)
	s.noticeLocked(LevelSuccess, "Task created", task.Name)
	return task.Clone(), nil
}

func (s *Store) DeleteTask(ctx context.Context, id int) error {
	epoch := s.begin()
	err := s.api.DeleteTask(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.landedLocked(ctx, epoch) {
		if err == nil {
			err = ctx.Err()
		}
		return err
	}
	if err != nil {
		s.failLocked("Failed to delete task", err, log.Fields{"task_id": id})
		return err
	}
	s.seq++
	s.deletedAt[id] = s.seq
	if i := s.baseIndexLocked(id); i >= 0 {
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	}
	kept := s.pending[:0]
	for _, tr := range s.pending {
		if tr.TaskID != id {
			kept = append(kept, tr)
		}
	}
	s.pending = kept
	s.noticeLocked(LevelSuccess, "Task deleted", "")
	return nil
}

// UpdateTask applies patch provisionally, then commits the server's version
// or rolls the patch back.
func (s *Store) UpdateTask(ctx context.Context, id int, patch model.TaskUpdate) (model.Task, error) {
	return s.transition(ctx, id, KindUpdate, patch)
}

// CompleteTask marks a task done.
func (s *Store) CompleteTask(ctx context.Context, id int) (model.Task, error) {
	done := model.StatusDone
	return s.transition(ctx, id, KindComplete, model.TaskUpdate{Status: &done})
}

// MoveTask puts a task into another group of the board.
func (s *Store) MoveTask(ctx context.Context, id, groupID int) (model.Task, error) {
	return s.transition(ctx, id, KindMove, model.TaskUpdate{GroupID: &groupID})
}

func (s *Store) transition(ctx context.Context, id int, kind TransitionKind, patch model.TaskUpdate) (model.Task, error) {
	s.mu.Lock()
	if s.baseIndexLocked(id) < 0 {
		s.mu.Unlock()
		return model.Task{}, ErrTaskNotFound
	}
	s.seq++
	tr := &Transition{ID: uuid.New(), TaskID: id, Kind: kind, Patch: patch, StartedAt: s.now(), rev: s.seq}
	s.pending = append(s.pending, tr)
	s.mu.Unlock()

	server, err := s.api.UpdateTask(ctx, id, patch)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dropPendingLocked(tr.ID) {
		// removed by a reset or a delete
		if err == nil {
			err = ErrTaskNotFound
		}
		return model.Task{}, err
	}
	fields := log.Fields{"task_id": id, "kind": kind, "transition": tr.ID}
	if err != nil {
		s.logger.WithFields(fields).WithError(err).Info("transition rolled back")
		if ctx.Err() == nil {
			s.noticeLocked(LevelError, "Failed to update task", gateway.Message(err))
		}
		return model.Task{}, err
	}

	// server-confirmed: commit even when ctx is already done
	if i := s.baseIndexLocked(id); i >= 0 && tr.rev > s.baseRev[id] {
		s.tasks[i] = server
		s.baseRev[id] = tr.rev
		s.seq++
		s.stamp[id] = s.seq
	}
	s.logger.WithFields(fields).Debug("transition committed")
	for _, t := range s.visibleLocked() {
		if t.ID == id {
			return t, nil
		}
	}
	return server.Clone(), nil
}

func (s *Store) dropPendingLocked(id uuid.UUID) bool {
	for i, tr := range s.pending {
		if tr.ID == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return true
		}
	}
	return false
}
