package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"planner/internal/apitest"
	"planner/internal/board"
	"planner/internal/gateway"
	"planner/internal/handler"
	"planner/internal/middleware"
	"planner/internal/model"
	"planner/internal/repository"
	"planner/internal/session"
	"planner/internal/store"

	"github.com/gin-gonic/gin"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router  *gin.Engine
	fake    *apitest.Fake
	sess    *session.Session
	store   *store.Store
	tracker *board.Tracker
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := apitest.New()
	srv := fake.Start()
	t.Cleanup(srv.Close)

	logger, _ := logtest.NewNullLogger()
	sess := session.New(repository.NewMemoryStorage(), logger)
	client := gateway.New(apitest.BaseURL(srv), sess, gateway.WithLogger(logger))
	st := store.New(client, logger)
	tracker := board.NewTracker()

	sessionHandler := handler.NewSessionHandler(sess, client, st, tracker, logger)
	taskHandler := handler.NewTaskHandler(st)
	boardHandler := handler.NewBoardHandler(st)
	dragHandler := handler.NewDragHandler(st, tracker, logger)
	planHandler := handler.NewPlanHandler(st)
	teamHandler := handler.NewTeamHandler(st)
	stateHandler := handler.NewStateHandler(st)

	r := gin.New()
	r.POST("/session/login", sessionHandler.Login)
	r.GET("/session", sessionHandler.Status)
	r.POST("/session/logout", sessionHandler.Logout)

	authorized := r.Group("/")
	authorized.Use(middleware.SessionGuard(sess))
	{
		authorized.POST("/refresh", stateHandler.Refresh)
		authorized.GET("/summary", stateHandler.Summary)
		authorized.GET("/notices", stateHandler.Notices)
		authorized.GET("/tasks", taskHandler.List)
		authorized.POST("/tasks", taskHandler.Create)
		authorized.GET("/tasks/transitions", taskHandler.Transitions)
		authorized.GET("/tasks/:id", taskHandler.Get)
		authorized.PATCH("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)
		authorized.POST("/tasks/:id/complete", taskHandler.Complete)
		authorized.POST("/tasks/:id/move", taskHandler.Move)
		authorized.GET("/boards", boardHandler.List)
		authorized.POST("/boards", boardHandler.Create)
		authorized.DELETE("/boards/:id", boardHandler.Delete)
		authorized.POST("/boards/:id/select", boardHandler.Select)
		authorized.POST("/boards/:id/groups", boardHandler.CreateGroup)
		authorized.GET("/view", boardHandler.View)
		authorized.GET("/drag", dragHandler.State)
		authorized.POST("/drag/start", dragHandler.Start)
		authorized.POST("/drag/over", dragHandler.Over)
		authorized.POST("/drag/end", dragHandler.End)
		authorized.POST("/drag/cancel", dragHandler.Cancel)
		authorized.GET("/plans", planHandler.List)
		authorized.GET("/plans/:date", planHandler.Get)
		authorized.PUT("/plans/:date", planHandler.Save)
		authorized.GET("/teams", teamHandler.List)
		authorized.POST("/teams", teamHandler.Create)
		authorized.POST("/teams/:id/select", teamHandler.Select)
		authorized.POST("/teams/:id/members", teamHandler.AddMember)
		authorized.GET("/permissions", teamHandler.Permissions)
	}

	return &testEnv{router: r, fake: fake, sess: sess, store: st, tracker: tracker}
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	return resp
}

// loggedIn logs the seeded admin in and loads everything.
func loggedIn(t *testing.T) *testEnv {
	t.Helper()
	e := setupTest(t)
	resp := e.do(http.MethodPost, "/session/login", handler.LoginRequest{Email: apitest.AdminEmail, Password: apitest.AdminPassword})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	resp = e.do(http.MethodPost, "/refresh", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return e
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	return out
}

func errorOf(t *testing.T, resp *httptest.ResponseRecorder) string {
	return decode[map[string]string](t, resp)["error"]
}

func TestLogin_Success(t *testing.T) {
	// Arrange
	e := setupTest(t)

	// Act
	resp := e.do(http.MethodPost, "/session/login", handler.LoginRequest{Email: apitest.AdminEmail, Password: apitest.AdminPassword})

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	snap := decode[map[string]any](t, resp)
	assert.Equal(t, "authenticated", snap["state"])
	assert.Equal(t, true, snap["has_token"])
	assert.Equal(t, apitest.AdminEmail, snap["user"].(map[string]any)["email"])
	assert.True(t, e.sess.IsAuthenticated())
}

func TestLogin_FormFields(t *testing.T) {
	e := setupTest(t)

	form := url.Values{"username": {apitest.MemberEmail}, "password": {apitest.MemberPassword}}
	req, _ := http.NewRequest(http.MethodPost, "/session/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	require.NotNil(t, e.sess.User())
	assert.Equal(t, apitest.MemberID, e.sess.User().ID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	e := setupTest(t)

	resp := e.do(http.MethodPost, "/session/login", handler.LoginRequest{Email: apitest.AdminEmail, Password: "wrong_password"})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Incorrect email or password", errorOf(t, resp))
	assert.False(t, e.sess.HasToken())
}

func TestLogin_MissingFields(t *testing.T) {
	e := setupTest(t)

	resp := e.do(http.MethodPost, "/session/login", map[string]string{"email": apitest.AdminEmail})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestProtectedRoutes_RequireSession(t *testing.T) {
	e := setupTest(t)

	resp := e.do(http.MethodGet, "/tasks", nil)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Not authenticated", errorOf(t, resp))
}

func TestLogout_ForgetsEverything(t *testing.T) {
	e := loggedIn(t)
	require.NotEmpty(t, e.store.Tasks())

	resp := e.do(http.MethodPost, "/session/logout", nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	assert.False(t, e.sess.HasToken())
	assert.Empty(t, e.store.Tasks())
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/tasks", nil).Code)
}

func TestRefresh_LoadsEverything(t *testing.T) {
	e := loggedIn(t)

	resp := e.do(http.MethodGet, "/summary", nil)
	summary := decode[store.Summary](t, resp)
	assert.Equal(t, store.StatusSucceeded, summary.Tasks.Status)
	assert.Equal(t, store.StatusSucceeded, summary.Boards.Status)
	assert.Equal(t, store.StatusSucceeded, summary.Teams.Status)
	assert.Equal(t, store.StatusSucceeded, summary.Plans.Status)
}

func TestView_ColumnsOfCurrentBoard(t *testing.T) {
	e := loggedIn(t)

	resp := e.do(http.MethodGet, "/view", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	view := decode[board.View](t, resp)

	assert.Equal(t, board.Ready, view.EmptyState)
	require.NotNil(t, view.Current)
	assert.Equal(t, apitest.BoardID, view.Current.ID)
	require.Len(t, view.Columns, 3)
	ids := []int{}
	for _, task := range view.Columns[0].Tasks {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []int{1, 6, 7}, ids)
	assert.Equal(t, 100, view.Columns[2].Completion)
	assert.Equal(t, 1, view.Unassigned)
}

func TestListTasks_StatusFilter(t *testing.T) {
	e := loggedIn(t)

	resp := e.do(http.MethodGet, "/tasks?status=done", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	tasks := decode[[]model.Task](t, resp)
	require.Len(t, tasks, 1)
	assert.Equal(t, 3, tasks[0].ID)

	resp = e.do(http.MethodGet, "/tasks?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateAndDeleteTask(t *testing.T) {
	e := loggedIn(t)

	resp := e.do(http.MethodPost, "/tasks", model.TaskCreate{Name: "Plan sprint"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	created := decode[model.Task](t, resp)
	assert.Equal(t, "Plan sprint", created.Name)

	resp = e.do(http.MethodDelete, "/tasks/"+itoa(created.ID), nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)
	_, found := e.fake.Task(created.ID)
	assert.False(t, found)

	resp = e.do(http.MethodGet, "/tasks/"+itoa(created.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCreateTask_MissingName(t *testing.T) {
	e := loggedIn(t)

	resp := e.do(http.MethodPost, "/tasks", map[string]string{"description": "no name"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUpdateTask_EmptyPatch(t *testing.T) {
	e := loggedIn(t)

	resp := e.do(http.MethodPatch, "/tasks/1", map[string]any{})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Nothing to update", errorOf(t, resp))
}

func TestTask_InvalidPriority(t *testing.T) {
	e := loggedIn(t)
	before := len(e.fake.Requests())

	resp := e.do(http.MethodPost, "/tasks", map[string]string{"name": "x", "priority": "critical"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Invalid priority", errorOf(t, resp))

	resp = e.do(http.MethodPatch, "/tasks/1", map[string]string{"priority": "critical"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Invalid priority", errorOf(t, resp))

	assert.Len(t, e.fake.Requests(), before)
}

func TestUpdateTask_RejectedIsRolledBack(t *testing.T) {
	e := loggedIn(t)
	e.fake.FailNext(http.MethodPatch, "/tasks/:id", http.StatusInternalServerError, "boom")

	name := "Renamed"
	resp := e.do(http.MethodPatch, "/tasks/1", model.TaskUpdate{Name: &name})

	assert.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Equal(t, "Something went wrong. Please try again later.", errorOf(t, resp))
	task, ok := e.store.Task(1)
	require.True(t, ok)
	assert.Equal(t, "Write weekly plan", task.Name)
	assert.Empty(t, e.store.Pending())

	notices := decode[[]store.Notice](t, e.do(http.MethodGet, "/notices", nil))
	require.NotEmpty(t, notices)
	assert.Equal(t, "Failed to update task", notices[len(notices)-1].Title)
}

func TestCompleteTask(t *testing.T) {
	e := loggedIn(t)

	resp := e.do(http.MethodPost, "/tasks/1/complete", nil)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, model.StatusDone, decode[model.Task](t, resp).Status)
	server, _ := e.fake.Task(1)
	assert.Equal(t, model.StatusDone, server.Status)
}

func TestMoveTask(t *testing.T) {
	e := loggedIn(t)

	resp := e.do(http.MethodPost, "/tasks/7/move", handler.MoveTaskRequest{GroupID: apitest.DoingID})

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.True(t, decode[model.Task](t, resp).InGroup(apitest.DoingID))
	server, _ := e.fake.Task(7)
	assert.True(t, server.InGroup(apitest.DoingID))
}

func TestMoveTask_ColumnNotOnBoard(t *testing.T) {
	e := loggedIn(t)

	resp := e.do(http.MethodPost, "/tasks/7/move", handler.MoveTaskRequest{GroupID: 99})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	server, _ := e.fake.Task(7)
	assert.True(t, server.InGroup(apitest.BacklogID))
}

func TestMoveTask_UnknownTask(t *testing.T) {
	e := loggedIn(t)

	resp := e.do(http.MethodPost, "/tasks/999/move", handler.MoveTaskRequest{GroupID: apitest.DoingID})

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Task not found", errorOf(t, resp))
}

func TestDrag_ComputesWithoutPersisting(t *testing.T) {
	e := loggedIn(t)

	resp := e.do(http.MethodPost, "/drag/start", handler.DragStartRequest{Kind: board.TargetTask, ID: 7})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "dragging-task", decode[map[string]any](t, resp)["mode"])

	resp = e.do(http.MethodPost, "/drag/over", board.Target{Kind: board.TargetColumn, GroupID: apitest.DoingID})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, apitest.DoingID, decode[map[string]any](t, resp)["candidate_group_id"])

	resp = e.do(http.MethodPost, "/drag/end", handler.DragEndRequest{Target: &board.Target{Kind: board.TargetColumn, GroupID: apitest.DoingID}})
	require.Equal(t, http.StatusOK, resp.Code)
	drop := decode[map[string]any](t, resp)
	assert.EqualValues(t, 7, drop["task_id"])
	assert.EqualValues(t, apitest.BacklogID, drop["from_group_id"])
	assert.EqualValues(t, apitest.DoingID, drop["to_group_id"])
	assert.Equal(t, true, drop["moved"])

	// Nothing was written anywhere
	server, _ := e.fake.Task(7)
	assert.True(t, server.InGroup(apitest.BacklogID))
	local, _ := e.store.Task(7)
	assert.True(t, local.InGroup(apitest.BacklogID))
	assert.Equal(t, board.Idle, e.tracker.State().Mode)
}

func TestDrag_DropOnTaskUsesItsColumn(t *testing.T) {
	e := loggedIn(t)
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/drag/start", handler.DragStartRequest{Kind: board.TargetTask, ID: 7}).Code)

	resp := e.do(http.MethodPost, "/drag/end", handler.DragEndRequest{Target: &board.Target{Kind: board.TargetTask, TaskID: 3}})

	require.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, apitest.DoneID, decode[map[string]any](t, resp)["to_group_id"])
}

func TestDrag_ReleasedOutside(t *testing.T) {
	e := loggedIn(t)
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/drag/start", handler.DragStartRequest{Kind: board.TargetTask, ID: 1}).Code)

	req, _ := http.NewRequest(http.MethodPost, "/drag/end", nil)
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	drop := decode[map[string]any](t, resp)
	assert.Equal(t, true, drop["cancelled"])
	assert.Equal(t, false, drop["moved"])
}

func TestDrag_AlreadyDragging(t *testing.T) {
	e := loggedIn(t)
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/drag/start", handler.DragStartRequest{Kind: board.TargetTask, ID: 1}).Code)

	resp := e.do(http.MethodPost, "/drag/start", handler.DragStartRequest{Kind: board.TargetColumn, ID: apitest.DoingID})
	assert.Equal(t, http.StatusConflict, resp.Code)

	assert.Equal(t, http.StatusNoContent, e.do(http.MethodPost, "/drag/cancel", nil).Code)
	assert.Equal(t, "idle", decode[map[string]any](t, e.do(http.MethodGet, "/drag", nil))["mode"])
}

func TestDrag_ColumnReorder(t *testing.T) {
	e := loggedIn(t)
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/drag/start", handler.DragStartRequest{Kind: board.TargetColumn, ID: apitest.BacklogID}).Code)

	resp := e.do(http.MethodPost, "/drag/end", handler.DragEndRequest{Target: &board.Target{Kind: board.TargetColumn, GroupID: apitest.DoneID}})

	require.Equal(t, http.StatusOK, resp.Code)
	drop := decode[board.Drop](t, resp)
	assert.Equal(t, []int{apitest.DoingID, apitest.DoneID, apitest.BacklogID}, drop.GroupOrder)
}

func TestDrag_UnknownTarget(t *testing.T) {
	e := loggedIn(t)
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/drag/start", handler.DragStartRequest{Kind: board.TargetTask, ID: 1}).Code)

	resp := e.do(http.MethodPost, "/drag/end", handler.DragEndRequest{Target: &board.Target{Kind: board.TargetColumn, GroupID: 99}})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, board.Idle, e.tracker.State().Mode)
}

func TestCreateGroup_AppendsAndRefetches(t *testing.T) {
	e := loggedIn(t)

	resp := e.do(http.MethodPost, "/boards/1/groups", model.GroupCreate{Name: "Review", Color: "#f59e0b"})

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, 3, decode[model.Group](t, resp).Order)
	view := decode[board.View](t, e.do(http.MethodGet, "/view", nil))
	require.Len(t, view.Columns, 4)
	assert.Equal(t, "Review", view.Columns[3].Group.Name)
	assert.Empty(t, view.Columns[3].Tasks)
}

func TestCreateGroup_OtherBoardKeepsSelection(t *testing.T) {
	e := loggedIn(t)
	resp := e.do(http.MethodPost, "/boards", model.BoardCreate{Name: "Side project"})
	require.Equal(t, http.StatusCreated, resp.Code)
	side := decode[model.Board](t, resp)

	resp = e.do(http.MethodPost, "/boards/"+itoa(side.ID)+"/groups", model.GroupCreate{Name: "Todo"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, 0, decode[model.Group](t, resp).Order)
	assert.Equal(t, apitest.BoardID, e.store.CurrentBoard().ID)

	resp = e.do(http.MethodPost, "/boards/999/groups", model.GroupCreate{Name: "Todo"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestBoards_CreateSelectDelete(t *testing.T) {
	e := loggedIn(t)

	resp := e.do(http.MethodPost, "/boards", model.BoardCreate{Name: "Side project"})
	require.Equal(t, http.StatusCreated, resp.Code)
	created := decode[model.Board](t, resp)

	resp = e.do(http.MethodPost, "/boards/"+itoa(created.ID)+"/select", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	view := decode[board.View](t, e.do(http.MethodGet, "/view", nil))
	assert.Equal(t, board.NoGroups, view.EmptyState)

	resp = e.do(http.MethodDelete, "/boards/"+itoa(created.ID), nil)
	require.Equal(t, http.StatusNoContent, resp.Code)
	require.NotNil(t, e.store.CurrentBoard())
	assert.Equal(t, apitest.BoardID, e.store.CurrentBoard().ID)

	resp = e.do(http.MethodPost, "/boards/abc/select", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestPlans_SaveCreatesThenUpdates(t *testing.T) {
	e := loggedIn(t)
	work := 8.0

	resp := e.do(http.MethodPut, "/plans/2024-05-02", model.PlanUpdate{WorkTime: &work})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	plan := decode[handler.PlanView](t, resp)
	assert.Equal(t, 8.0, plan.FreeHours)
	assert.False(t, plan.Overbooked)

	work, commute := 10.0, 7.0
	resp = e.do(http.MethodPut, "/plans/2024-05-02", model.PlanUpdate{WorkTime: &work, CommuteTime: &commute})
	require.Equal(t, http.StatusOK, resp.Code)
	plan = decode[handler.PlanView](t, resp)
	assert.Equal(t, -1.0, plan.FreeHours)
	assert.True(t, plan.Overbooked)

	resp = e.do(http.MethodGet, "/plans/2024-05-02", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 10.0, decode[handler.PlanView](t, resp).WorkTime)
}

func TestPlans_Validation(t *testing.T) {
	e := loggedIn(t)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/plans/05-02-2024", nil).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/plans?start_date=tomorrow", nil).Code)

	hours := 30.0
	resp := e.do(http.MethodPut, "/plans/2024-05-02", model.PlanUpdate{SleepTime: &hours})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = e.do(http.MethodGet, "/plans/2030-01-01", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Plan not found", errorOf(t, resp))
}

func TestPermissions(t *testing.T) {
	e := loggedIn(t)

	resp := e.do(http.MethodGet, "/permissions?required=ADMIN", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	perm := decode[handler.PermissionResponse](t, resp)
	assert.Equal(t, apitest.TeamID, perm.TeamID)
	assert.Equal(t, "owner", perm.Role)
	assert.Equal(t, "admin", perm.Required)
	assert.True(t, perm.Allowed)

	resp = e.do(http.MethodGet, "/permissions?required=superuser", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestPermissions_MemberIsNotAdmin(t *testing.T) {
	e := setupTest(t)
	resp := e.do(http.MethodPost, "/session/login", handler.LoginRequest{Email: apitest.MemberEmail, Password: apitest.MemberPassword})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, http.StatusOK, e.do(http.MethodGet, "/teams", nil).Code)

	perm := decode[handler.PermissionResponse](t, e.do(http.MethodGet, "/permissions?required=admin", nil))
	assert.Equal(t, "member", perm.Role)
	assert.False(t, perm.Allowed)

	perm = decode[handler.PermissionResponse](t, e.do(http.MethodGet, "/permissions?required=viewer", nil))
	assert.True(t, perm.Allowed)
}

func TestTeams_UnknownRoleStillRenders(t *testing.T) {
	e := loggedIn(t)
	body := `[{"id":` + itoa(apitest.TeamID) + `,"name":"Guests","members":[` +
		`{"id":9,"user_id":` + itoa(apitest.AdminID) + `,"team_id":` + itoa(apitest.TeamID) + `,"role":"guest","user_email":"` + apitest.AdminEmail + `"}]}]`
	e.fake.RespondNext(http.MethodGet, "/teams/", http.StatusOK, body)

	resp := e.do(http.MethodGet, "/teams", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	teams := decode[[]model.Team](t, resp)
	require.Len(t, teams, 1)
	require.Len(t, teams[0].Members, 1)
	assert.Equal(t, model.RoleBelowMinimum, teams[0].Members[0].Role)
	assert.Contains(t, resp.Body.String(), `"role":"unknown"`)

	perm := decode[handler.PermissionResponse](t, e.do(http.MethodGet, "/permissions?required=viewer", nil))
	assert.Equal(t, "unknown", perm.Role)
	assert.False(t, perm.Allowed)
}

func TestTeams_AddMember(t *testing.T) {
	e := loggedIn(t)

	resp := e.do(http.MethodPost, "/teams", model.TeamCreate{Name: "Ops"})
	require.Equal(t, http.StatusCreated, resp.Code)
	team := decode[model.Team](t, resp)

	resp = e.do(http.MethodPost, "/teams/"+itoa(team.ID)+"/members", handler.AddMemberRequest{Email: apitest.MemberEmail, Role: "Viewer"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, model.RoleViewer, decode[model.TeamMember](t, resp).Role)

	resp = e.do(http.MethodPost, "/teams/"+itoa(team.ID)+"/members", handler.AddMemberRequest{Email: apitest.MemberEmail, Role: "boss"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Unknown role", errorOf(t, resp))

	resp = e.do(http.MethodPost, "/teams/"+itoa(team.ID)+"/select", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	resp = e.do(http.MethodPost, "/teams/999/select", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func itoa(v int) string {
	b, _ := json.Marshal(v)
	return string(b)
}
