// Package store is the client-side state container. It holds the last fetched
// collections, applies optimistic task transitions and queues transient
// notices for the UI.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"planner/internal/gateway"
	"planner/internal/model"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const maxNotices = 50

var (
	ErrTaskNotFound  = errors.New("store: task not found")
	ErrBoardNotFound = errors.New("store: board not found")
	ErrTeamNotFound  = errors.New("store: team not found")
	ErrNoBoard       = errors.New("store: no board selected")
)

// API is the part of the gateway the store drives.
type API interface {
	ListTasks(ctx context.Context, f gateway.TaskFilter) ([]model.Task, error)
	CreateTask(ctx context.Context, req model.TaskCreate) (model.Task, error)
	UpdateTask(ctx context.Context, id int, req model.TaskUpdate) (model.Task, error)
	DeleteTask(ctx context.Context, id int) error

	ListBoards(ctx context.Context) ([]model.Board, error)
	GetBoard(ctx context.Context, id int) (model.Board, error)
	CreateBoard(ctx context.Context, req model.BoardCreate) (model.Board, error)
	DeleteBoard(ctx context.Context, id int) error
	CreateGroup(ctx context.Context, boardID int, req model.GroupCreate) (model.Group, error)

	ListPlans(ctx context.Context, r gateway.PlanRange) ([]model.Plan, error)
	GetPlan(ctx context.Context, date string) (model.Plan, error)
	CreatePlan(ctx context.Context, req model.PlanCreate) (model.Plan, error)
	UpdatePlan(ctx context.Context, date string, req model.PlanUpdate) (model.Plan, error)

	ListTeams(ctx context.Context) ([]model.Team, error)
	CreateTeam(ctx context.Context, req model.TeamCreate) (model.Team, error)
	AddTeamMember(ctx context.Context, teamID int, req model.MemberCreate) (model.TeamMember, error)
}

type LoadStatus string

const (
	StatusIdle      LoadStatus = "idle"
	StatusLoading   LoadStatus = "loading"
	StatusSucceeded LoadStatus = "succeeded"
	StatusFailed    LoadStatus = "failed"
)

type SliceState struct {
	Status LoadStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

type Summary struct {
	Tasks  SliceState `json:"tasks"`
	Boards SliceState `json:"boards"`
	Plans  SliceState `json:"plans"`
	Teams  SliceState `json:"teams"`
}

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notice struct {
	Level   Level     `json:"level"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// tracked holds the load status of one collection. gen is bumped by every
// fetch; only the newest fetch may write.
type tracked struct {
	state SliceState
	gen   uint64
}

func (s *tracked) begin() (uint64, SliceState) {
	prev := s.state
	s.gen++
	s.state = SliceState{Status: StatusLoading}
	return s.gen, prev
}

// settle reports whether a fetch started at gen may still write, and records
// its outcome when it may. A cancelled fetch restores the previous state.
func (s *tracked) settle(ctx context.Context, gen uint64, prev SliceState, err error) bool {
	if gen != s.gen {
		return false
	}
	if ctx.Err() != nil {
		s.state = prev
		return false
	}
	if err != nil {
		s.state = SliceState{Status: StatusFailed, Error: gateway.Message(err)}
		return false
	}
	s.state = SliceState{Status: StatusSucceeded}
	return true
}

func (s *tracked) reset() {
	s.gen++
	s.state = SliceState{Status: StatusIdle}
}

type Store struct {
	mu     sync.Mutex
	api    API
	logger log.FieldLogger
	now    func() time.Time
	epoch  uint64

	tasks       []model.Task
	taskFilter  gateway.TaskFilter
	tasksSlice  tracked
	pending     []*Transition
	seq         uint64
	baseRev     map[int]uint64
	stamp       map[int]uint64
	deletedAt   map[int]uint64
	boards      []model.Board
	boardID     int
	boardsSlice tracked
	boardGen    uint64
	plans       []model.Plan
	plan        *model.Plan
	plansSlice  tracked
	planGen     uint64
	teams       []model.Team
	teamID      int
	teamsSlice  tracked

	notices []Notice
}

func New(api API, logger log.FieldLogger) *Store {
	s := &Store{api: api, logger: logger, now: time.Now}
	s.resetLocked()
	return s
}

func (s *Store) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{
		Tasks:  s.tasksSlice.state,
		Boards: s.boardsSlice.state,
		Plans:  s.plansSlice.state,
		Teams:  s.teamsSlice.state,
	}
}

// Refresh reloads boards, tasks, teams and plans concurrently and returns the
// first failure.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	filter := s.taskFilter
	s.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.FetchBoards(ctx) })
	g.Go(func() error { return s.FetchTasks(ctx, filter) })
	g.Go(func() error { return s.FetchTeams(ctx) })
	g.Go(func() error { return s.FetchPlans(ctx, gateway.PlanRange{}) })
	return g.Wait()
}

// Reset forgets everything; in-flight calls started before it write nothing.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Store) resetLocked() {
	s.epoch++
	s.tasks = nil
	s.taskFilter = gateway.TaskFilter{}
	s.tasksSlice.reset()
	s.pending = nil
	s.seq++
	s.baseRev = make(map[int]uint64)
	s.stamp = make(map[int]uint64)
	s.deletedAt = make(map[int]uint64)
	s.boards = nil
	s.boardID = 0
	s.boardsSlice.reset()
	s.boardGen++
	s.plans = nil
	s.plan = nil
	s.plansSlice.reset()
	s.planGen++
	s.teams = nil
	s.teamID = 0
	s.teamsSlice.reset()
}

// Notices drains the queued notices, oldest first.
func (s *Store) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}

func (s *Store) noticeLocked(level Level, title, message string) {
	s.notices = append(s.notices, Notice{Level: level, Title: title, Message: message, At: s.now()})
	if over := len(s.notices) - maxNotices; over > 0 {
		s.notices = append([]Notice(nil), s.notices[over:]...)
	}
}

// begin returns the epoch a mutation must still be in when it completes.
func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// landedLocked reports whether a mutation started at epoch may write its result.
func (s *Store) landedLocked(ctx context.Context, epoch uint64) bool {
	return ctx.Err() == nil && epoch == s.epoch
}

func (s *Store) failLocked(title string, err error, fields log.Fields) {
	s.logger.WithFields(fields).WithError(err).Warn(title)
	s.noticeLocked(LevelError, title, gateway.Message(err))
}
