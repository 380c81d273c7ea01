package apitest

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"planner/internal/auth"
	"planner/internal/model"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func (f *Fake) login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		missingField(c, "username")
		return
	}

	f.mu.Lock()
	var found *userRecord
	for _, u := range f.users {
		if strings.EqualFold(u.user.Email, username) {
			found = u
			break
		}
	}
	secret := f.secret
	f.mu.Unlock()

	if found == nil || bcrypt.CompareHashAndPassword(found.hash, []byte(password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Incorrect email or password"})
		return
	}
	token, err := auth.GenerateToken(strconv.Itoa(found.user.ID), secret, time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not issue token"})
		return
	}
	c.JSON(http.StatusOK, model.Token{AccessToken: token, TokenType: "bearer"})
}

func (f *Fake) signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		missingField(c, "email")
		return
	}
	if len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Password must be at least 6 characters"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.user.Email, req.Email) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "This email is already registered"})
			return
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not hash password"})
		return
	}
	now := time.Now().UTC()
	rec := &userRecord{
		user: model.User{ID: f.newID(), Email: req.Email, FullName: req.FullName, IsActive: true, CreatedAt: now, UpdatedAt: now},
		hash: hash,
	}
	f.users[rec.user.ID] = rec
	c.JSON(http.StatusCreated, rec.user)
}

func (f *Fake) me(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.JSON(http.StatusOK, f.users[currentUser(c)].user)
}

func (f *Fake) listTasks(c *gin.Context) {
	date := c.Query("date")
	status := model.TaskStatus(c.Query("status_filter"))
	uid := currentUser(c)

	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Task{}
	for _, t := range f.tasks {
		if t.UserID != uid {
			continue
		}
		if date != "" && (t.Date == nil || *t.Date != date) {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, t.Clone())
	}
	c.JSON(http.StatusOK, out)
}

// taskIndex must be called with f.mu held.
func (f *Fake) taskIndex(c *gin.Context) (int, bool) {
	id, ok := pathID(c)
	if !ok {
		return 0, false
	}
	uid := currentUser(c)
	for i, t := range f.tasks {
		if t.ID == id && t.UserID == uid {
			return i, true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Task not found"})
	return 0, false
}

func (f *Fake) getTask(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.taskIndex(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, f.tasks[i].Clone())
}

func (f *Fake) createTask(c *gin.Context) {
	var req model.TaskCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		missingField(c, "name")
		return
	}
	if req.Status == "" {
		req.Status = model.StatusNotStarted
	}
	if req.Priority == "" {
		req.Priority = model.PriorityMedium
	}
	if !req.Status.Valid() || !req.Priority.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "Input should be a valid enumeration member"}}})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	t := model.Task{
		ID:          f.newID(),
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Date:        req.Date,
		UserID:      currentUser(c),
		GroupID:     req.GroupID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Subtasks:    []model.Subtask{},
	}
	for i, s := range req.Subtasks {
		t.Subtasks = append(t.Subtasks, model.Subtask{
			ID: f.newID(), Name: s.Name, Order: i, TaskID: t.ID, CreatedAt: now, UpdatedAt: now,
		})
	}
	f.tasks = append(f.tasks, t)
	c.JSON(http.StatusCreated, t.Clone())
}

func (f *Fake) updateTask(c *gin.Context) {
	var patch model.TaskUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "Invalid JSON body"}}})
		return
	}
	if patch.Status != nil && !patch.Status.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "Input should be a valid enumeration member"}}})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.taskIndex(c)
	if !ok {
		return
	}
	updated := patch.Apply(f.tasks[i])
	updated.UpdatedAt = time.Now().UTC()
	f.tasks[i] = updated
	c.JSON(http.StatusOK, updated.Clone())
}

func (f *Fake) deleteTask(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.taskIndex(c)
	if !ok {
		return
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	c.Status(http.StatusNoContent)
}

func (f *Fake) listBoards(c *gin.Context) {
	uid := currentUser(c)
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Board{}
	for _, b := range f.boards {
		if b.UserID == uid {
			out = append(out, b.Clone())
		}
	}
	c.JSON(http.StatusOK, out)
}

// boardIndex must be called with f.mu held.
func (f *Fake) boardIndex(c *gin.Context) (int, bool) {
	id, ok := pathID(c)
	if !ok {
		return 0, false
	}
	uid := currentUser(c)
	for i, b := range f.boards {
		if b.ID == id && b.UserID == uid {
			return i, true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Board not found"})
	return 0, false
}

func (f *Fake) getBoard(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.boardIndex(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, f.boards[i].Clone())
}

func (f *Fake) createBoard(c *gin.Context) {
	var req model.BoardCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		missingField(c, "name")
		return
	}
	uid := currentUser(c)

	f.mu.Lock()
	defer f.mu.Unlock()
	owned := 0
	for _, b := range f.boards {
		if b.UserID == uid {
			owned++
		}
	}
	if owned >= freeBoardLimit {
		c.JSON(http.StatusForbidden, gin.H{"detail": fmt.Sprintf("Free plan is limited to %d boards. Please upgrade to Pro.", freeBoardLimit)})
		return
	}
	now := time.Now().UTC()
	b := model.Board{ID: f.newID(), Name: req.Name, Description: req.Description, UserID: uid, CreatedAt: now, UpdatedAt: now, Groups: []model.Group{}}
	f.boards = append(f.boards, b)
	c.JSON(http.StatusCreated, b.Clone())
}

func (f *Fake) deleteBoard(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.boardIndex(c)
	if !ok {
		return
	}
	f.boards = append(f.boards[:i], f.boards[i+1:]...)
	c.Status(http.StatusNoContent)
}

func (f *Fake) listGroups(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.boardIndex(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, append([]model.Group{}, f.boards[i].Groups...))
}

func (f *Fake) createGroup(c *gin.Context) {
	var req model.GroupCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		missingField(c, "name")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.boardIndex(c)
	if !ok {
		return
	}
	order := len(f.boards[i].Groups)
	if req.Order != nil {
		order = *req.Order
	}
	color := req.Color
	if color == "" {
		color = "#64748b"
	}
	now := time.Now().UTC()
	g := model.Group{ID: f.newID(), Name: req.Name, Color: color, Order: order, BoardID: f.boards[i].ID, CreatedAt: now, UpdatedAt: now}
	f.boards[i].Groups = append(f.boards[i].Groups, g)
	sort.SliceStable(f.boards[i].Groups, func(a, b int) bool {
		return f.boards[i].Groups[a].Order < f.boards[i].Groups[b].Order
	})
	c.JSON(http.StatusCreated, g)
}

func (f *Fake) listPlans(c *gin.Context) {
	start, end := c.Query("start_date"), c.Query("end_date")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Plan{}
	for _, p := range f.plans[currentUser(c)] {
		if start != "" && p.Date < start {
			continue
		}
		if end != "" && p.Date > end {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Date < out[b].Date })
	c.JSON(http.StatusOK, out)
}

func validDate(c *gin.Context, date string) bool {
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "Input should be a valid date"}}})
		return false
	}
	return true
}

func (f *Fake) getPlan(c *gin.Context) {
	date := c.Param("date")
	if !validDate(c, date) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plans[currentUser(c)][date]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Plan not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (f *Fake) createPlan(c *gin.Context) {
	var req model.PlanCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		missingField(c, "date")
		return
	}
	if !validDate(c, req.Date) {
		return
	}
	uid := currentUser(c)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.plans[uid][req.Date]; exists {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Plan already exists for this date"})
		return
	}
	now := time.Now().UTC()
	p := model.Plan{ID: f.newID(), Date: req.Date, UserID: uid, SleepTime: 8, CreatedAt: now, UpdatedAt: now}
	applyHours(&p, req.SleepTime, req.CommuteTime, req.WorkTime)
	if f.plans[uid] == nil {
		f.plans[uid] = make(map[string]model.Plan)
	}
	f.plans[uid][req.Date] = p
	c.JSON(http.StatusCreated, p)
}

func (f *Fake) updatePlan(c *gin.Context) {
	date := c.Param("date")
	if !validDate(c, date) {
		return
	}
	var req model.PlanUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "Invalid JSON body"}}})
		return
	}
	uid := currentUser(c)
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plans[uid][date]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Plan not found"})
		return
	}
	applyHours(&p, req.SleepTime, req.CommuteTime, req.WorkTime)
	p.UpdatedAt = time.Now().UTC()
	f.plans[uid][date] = p
	c.JSON(http.StatusOK, p)
}

func applyHours(p *model.Plan, sleep, commute, work *float64) {
	if sleep != nil {
		p.SleepTime = *sleep
	}
	if commute != nil {
		p.CommuteTime = *commute
	}
	if work != nil {
		p.WorkTime = *work
	}
}

func (f *Fake) listTeams(c *gin.Context) {
	uid := currentUser(c)
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Team{}
	for _, t := range f.teams {
		if _, member := t.Member(uid); member {
			out = append(out, t.Clone())
		}
	}
	c.JSON(http.StatusOK, out)
}

func (f *Fake) createTeam(c *gin.Context) {
	var req model.TeamCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		missingField(c, "name")
		return
	}
	uid := currentUser(c)
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	t := model.Team{ID: f.newID(), Name: req.Name, CreatedAt: now, UpdatedAt: now}
	t.Members = []model.TeamMember{{
		ID: f.newID(), UserID: uid, TeamID: t.ID, Role: model.RoleOwner, JoinedAt: now, UserEmail: f.users[uid].user.Email,
	}}
	f.teams = append(f.teams, t)
	c.JSON(http.StatusCreated, t.Clone())
}

func (f *Fake) addMember(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req model.MemberCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		missingField(c, "email")
		return
	}
	if !req.Role.Known() {
		req.Role = model.RoleMember
	}
	uid := currentUser(c)

	f.mu.Lock()
	defer f.mu.Unlock()
	ti := -1
	for i, t := range f.teams {
		if t.ID == id {
			ti = i
			break
		}
	}
	if ti < 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Team not found"})
		return
	}
	self, member := f.teams[ti].Member(uid)
	if !member || self.Role < model.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"detail": "Only team admins can add members"})
		return
	}
	var invitee *userRecord
	for _, u := range f.users {
		if strings.EqualFold(u.user.Email, req.Email) {
			invitee = u
			break
		}
	}
	if invitee == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
		return
	}
	if _, exists := f.teams[ti].Member(invitee.user.ID); exists {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "User is already a member of this team"})
		return
	}
	m := model.TeamMember{
		ID: f.newID(), UserID: invitee.user.ID, TeamID: id, Role: req.Role, JoinedAt: time.Now().UTC(), UserEmail: invitee.user.Email,
	}
	f.teams[ti].Members = append(f.teams[ti].Members, m)
	c.JSON(http.StatusCreated, m)
}

func (f *Fake) checkout(c *gin.Context) {
	planID := c.Query("plan_id")
	if planID == "" {
		missingField(c, "plan_id")
		return
	}
	c.JSON(http.StatusOK, model.CheckoutSession{
		SessionID: "cs_test_" + planID,
		URL:       "https://checkout.example.com/pay/cs_test_" + planID,
	})
}

func (f *Fake) stats(c *gin.Context) {
	uid := currentUser(c)
	f.mu.Lock()
	defer f.mu.Unlock()
	done := 0
	for _, t := range f.tasks {
		if t.UserID == uid && t.Status == model.StatusDone {
			done++
		}
	}
	c.JSON(http.StatusOK, model.UserStats{UserID: uid, TotalXP: done * 10, Level: 1 + done/10, TasksCompleted: done})
}

func (f *Fake) taskHistory(c *gin.Context) {
	c.JSON(http.StatusOK, []model.TaskHistoryEntry{})
}

func (f *Fake) dailyStats(c *gin.Context) {
	c.JSON(http.StatusOK, []model.DailyStats{})
}

func (f *Fake) streak(c *gin.Context) {
	c.JSON(http.StatusOK, model.StreakData{ActivityCalendar: []model.ActivityDay{}})
}
