// Package apitest is an in-process stand-in for the remote planner REST API.
// It implements the request/response contract the gateway consumes, backed by
// memory, and lets tests inject one-shot failures per route.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"planner/internal/auth"
	"planner/internal/model"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const (
	AdminEmail     = "admin@planner.app"
	AdminPassword  = "admin123"
	MemberEmail    = "member@planner.app"
	MemberPassword = "member123"

	AdminID  = 1
	MemberID = 2

	BoardID   = 1
	BacklogID = 1
	DoingID   = 2
	DoneID    = 3

	TeamID = 1

	freeBoardLimit = 3
	userIDKey      = "user_id"
)

type userRecord struct {
	user model.User
	hash []byte
}

type failure struct {
	status int
	detail string
	body   string
}

// Request is what the fake saw for one call.
type Request struct {
	Method        string
	Route         string
	Path          string
	Authorization string
	RequestID     string
}

type Fake struct {
	mu       sync.Mutex
	secret   []byte
	users    map[int]*userRecord
	tasks    []model.Task
	boards   []model.Board
	plans    map[int]map[string]model.Plan
	teams    []model.Team
	nextID   int
	failures map[string]failure
	requests []Request
	engine   *gin.Engine
}

func New() *Fake {
	gin.SetMode(gin.TestMode)
	f := &Fake{
		secret:   []byte("apitest-secret"),
		users:    make(map[int]*userRecord),
		plans:    make(map[int]map[string]model.Plan),
		failures: make(map[string]failure),
		nextID:   100,
	}
	f.seed()
	f.engine = f.routes()
	return f
}

func (f *Fake) Handler() http.Handler {
	return f.engine
}

// Start serves the fake on a loopback listener; the caller closes it.
func (f *Fake) Start() *httptest.Server {
	return httptest.NewServer(f.engine)
}

// BaseURL is the gateway root for a started server.
func BaseURL(srv *httptest.Server) string {
	return srv.URL + "/api/v1"
}

// FailNext makes the next request to route (e.g. "/tasks/:id") answer status with detail.
func (f *Fake) FailNext(method, route string, status int, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+route] = failure{status: status, detail: detail}
}

// RespondNext makes the next request to route answer status with a raw JSON body.
func (f *Fake) RespondNext(method, route string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+route] = failure{status: status, body: body}
}

// TokenFor mints a valid token for a seeded user.
func (f *Fake) TokenFor(userID int) string {
	f.mu.Lock()
	secret := f.secret
	f.mu.Unlock()
	token, err := auth.GenerateToken(strconv.Itoa(userID), secret, time.Hour)
	if err != nil {
		panic(err)
	}
	return token
}

// RotateSecret invalidates every token issued so far.
func (f *Fake) RotateSecret() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.secret = append([]byte("rotated-"), f.secret...)
}

func (f *Fake) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

// Task returns the server-side copy of a task.
func (f *Fake) Task(id int) (model.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return model.Task{}, false
}

func (f *Fake) seed() {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	adminName := "Admin"
	f.addUser(AdminID, AdminEmail, AdminPassword, &adminName, now)
	f.addUser(MemberID, MemberEmail, MemberPassword, nil, now)

	f.boards = []model.Board{{
		ID:        BoardID,
		Name:      "Personal",
		UserID:    AdminID,
		CreatedAt: now,
		UpdatedAt: now,
		Groups: []model.Group{
			{ID: BacklogID, Name: "Backlog", Color: "#94a3b8", Order: 0, BoardID: BoardID, CreatedAt: now, UpdatedAt: now},
			{ID: DoingID, Name: "Doing", Color: "#3b82f6", Order: 1, BoardID: BoardID, CreatedAt: now, UpdatedAt: now},
			{ID: DoneID, Name: "Done", Color: "#22c55e", Order: 2, BoardID: BoardID, CreatedAt: now, UpdatedAt: now},
		},
	}}

	group := func(id int) *int { return &id }
	seedTasks := []struct {
		name   string
		status model.TaskStatus
		group  *int
	}{
		{"Write weekly plan", model.StatusNotStarted, group(BacklogID)},
		{"Review pull requests", model.StatusInProgress, group(DoingID)},
		{"Ship release notes", model.StatusDone, group(DoneID)},
		{"Call the dentist", model.StatusNotStarted, nil},
		{"Fix login redirect", model.StatusInProgress, group(DoingID)},
		{"Update onboarding docs", model.StatusNotStarted, group(BacklogID)},
		{"Refactor board store", model.StatusNotStarted, group(BacklogID)},
	}
	for i, s := range seedTasks {
		f.tasks = append(f.tasks, model.Task{
			ID:        i + 1,
			Name:      s.name,
			Status:    s.status,
			Priority:  model.PriorityMedium,
			UserID:    AdminID,
			GroupID:   s.group,
			CreatedAt: now,
			UpdatedAt: now,
			Subtasks:  []model.Subtask{},
		})
	}

	f.teams = []model.Team{{
		ID:        TeamID,
		Name:      "Core",
		CreatedAt: now,
		UpdatedAt: now,
		Members: []model.TeamMember{
			{ID: 1, UserID: AdminID, TeamID: TeamID, Role: model.RoleOwner, JoinedAt: now, UserEmail: AdminEmail},
			{ID: 2, UserID: MemberID, TeamID: TeamID, Role: model.RoleMember, JoinedAt: now, UserEmail: MemberEmail},
		},
	}}
}

func (f *Fake) addUser(id int, email, password string, fullName *string, now time.Time) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	f.users[id] = &userRecord{
		user: model.User{ID: id, Email: email, FullName: fullName, IsActive: true, CreatedAt: now, UpdatedAt: now},
		hash: hash,
	}
}

func (f *Fake) newID() int {
	f.nextID++
	return f.nextID
}

func (f *Fake) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), f.record, f.injectFailures)

	v1 := r.Group("/api/v1")
	v1.POST("/auth/login", f.login)
	v1.POST("/auth/signup", f.signup)

	authorized := v1.Group("/")
	authorized.Use(f.authenticate)
	{
		authorized.GET("/auth/me", f.me)

		authorized.GET("/tasks/", f.listTasks)
		authorized.POST("/tasks/", f.createTask)
		authorized.GET("/tasks/:id", f.getTask)
		authorized.PATCH("/tasks/:id", f.updateTask)
		authorized.DELETE("/tasks/:id", f.deleteTask)

		authorized.GET("/boards/", f.listBoards)
		authorized.POST("/boards/", f.createBoard)
		authorized.GET("/boards/:id", f.getBoard)
		authorized.DELETE("/boards/:id", f.deleteBoard)
		authorized.GET("/boards/:id/groups", f.listGroups)
		authorized.POST("/boards/:id/groups", f.createGroup)

		authorized.GET("/plans/", f.listPlans)
		authorized.POST("/plans/", f.createPlan)
		authorized.GET("/plans/:date", f.getPlan)
		authorized.PATCH("/plans/:date", f.updatePlan)

		authorized.GET("/teams/", f.listTeams)
		authorized.POST("/teams/", f.createTeam)
		authorized.POST("/teams/:id/members", f.addMember)

		authorized.POST("/payments/create-checkout-session", f.checkout)
		authorized.GET("/gamification/stats", f.stats)
		authorized.GET("/history/tasks", f.taskHistory)
		authorized.GET("/history/daily-stats", f.dailyStats)
		authorized.GET("/history/streak", f.streak)
	}
	return r
}

func route(c *gin.Context) string {
	return strings.TrimPrefix(c.FullPath(), "/api/v1")
}

func (f *Fake) record(c *gin.Context) {
	f.mu.Lock()
	f.requests = append(f.requests, Request{
		Method:        c.Request.Method,
		Route:         route(c),
		Path:          c.Request.URL.Path,
		Authorization: c.GetHeader("Authorization"),
		RequestID:     c.GetHeader("X-Request-ID"),
	})
	f.mu.Unlock()
	c.Next()
}

func (f *Fake) injectFailures(c *gin.Context) {
	key := c.Request.Method + " " + route(c)
	f.mu.Lock()
	fail, ok := f.failures[key]
	delete(f.failures, key)
	f.mu.Unlock()
	switch {
	case ok && fail.body != "":
		c.Data(fail.status, "application/json", []byte(fail.body))
		c.Abort()
		return
	case ok:
		c.AbortWithStatusJSON(fail.status, gin.H{"detail": fail.detail})
		return
	}
	c.Next()
}

func (f *Fake) authenticate(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}
	f.mu.Lock()
	secret := f.secret
	f.mu.Unlock()
	subject, err := auth.ParseToken(token, secret)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
		return
	}
	id, err := strconv.Atoi(subject)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
		return
	}
	f.mu.Lock()
	_, exists := f.users[id]
	f.mu.Unlock()
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
		return
	}
	c.Set(userIDKey, id)
	c.Next()
}

func currentUser(c *gin.Context) int {
	return c.GetInt(userIDKey)
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"loc": []string{"path", "id"}, "msg": "Input should be a valid integer"}}})
		return 0, false
	}
	return id, true
}

func missingField(c *gin.Context, field string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"loc": []string{"body", field}, "msg": "Field required"}}})
}
