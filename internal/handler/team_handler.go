package handler

import (
	"net/http"

	"planner/internal/access"
	"planner/internal/middleware"
	"planner/internal/model"
	"planner/internal/store"

	"github.com/gin-gonic/gin"
)

type TeamHandler struct {
	store *store.Store
}

func NewTeamHandler(st *store.Store) *TeamHandler {
	return &TeamHandler{store: st}
}

type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"`
}

type PermissionResponse struct {
	TeamID   int    `json:"team_id"`
	Role     string `json:"role"`
	Required string `json:"required"`
	Allowed  bool   `json:"allowed"`
}

// List godoc
// @Summary      List teams
// @Tags         teams
// @Produce      json
// @Success      200  {array}   model.Team
// @Router       /teams [get]
// @Security     BearerAuth
func (h *TeamHandler) List(c *gin.Context) {
	if err := h.store.FetchTeams(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.store.Teams())
}

// Create godoc
// @Summary      Create a team
// @Tags         teams
// @Accept       json
// @Produce      json
// @Param        team  body      model.TeamCreate  true  "Team"
// @Success      201   {object}  model.Team
// @Failure      400   {object}  map[string]string
// @Router       /teams [post]
// @Security     BearerAuth
func (h *TeamHandler) Create(c *gin.Context) {
	// Parse request body
	var req model.TeamCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	team, err := h.store.CreateTeam(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, team)
}

// Select godoc
// @Summary      Select a team
// @Tags         teams
// @Produce      json
// @Param        id   path      int  true  "Team ID"
// @Success      200  {object}  model.Team
// @Failure      404  {object}  map[string]string
// @Router       /teams/{id}/select [post]
// @Security     BearerAuth
func (h *TeamHandler) Select(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	team, err := h.store.SelectTeam(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, team)
}

// AddMember godoc
// @Summary      Add a team member
// @Description  Role defaults to member
// @Tags         teams
// @Accept       json
// @Produce      json
// @Param        id      path      int               true  "Team ID"
// @Param        member  body      AddMemberRequest  true  "Member"
// @Success      201     {object}  model.TeamMember
// @Failure      400     {object}  map[string]string
// @Failure      403     {object}  map[string]string
// @Router       /teams/{id}/members [post]
// @Security     BearerAuth
func (h *TeamHandler) AddMember(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	// Parse request body
	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role := model.RoleMember
	if req.Role != "" {
		role = model.ParseRole(req.Role)
		if !role.Known() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
			return
		}
	}

	m, err := h.store.AddTeamMember(c.Request.Context(), id, model.MemberCreate{Email: req.Email, Role: role})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// Permissions godoc
// @Summary      Check a permission
// @Description  Whether the current user holds at least the required role in the current team
// @Tags         teams
// @Produce      json
// @Param        required  query     string  true  "viewer, member, admin or owner"
// @Success      200       {object}  PermissionResponse
// @Failure      400       {object}  map[string]string
// @Router       /permissions [get]
// @Security     BearerAuth
func (h *TeamHandler) Permissions(c *gin.Context) {
	required := model.ParseRole(c.Query("required"))
	if !required.Known() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		return
	}

	// Get user ID from context (set by SessionGuard)
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	user := &model.User{ID: userID.(int)}
	team := h.store.CurrentTeam()
	resp := PermissionResponse{
		Role:     access.RoleOf(team, user).String(),
		Required: required.String(),
		Allowed:  access.Check(team, user, required),
	}
	if team != nil {
		resp.TeamID = team.ID
	}
	c.JSON(http.StatusOK, resp)
}
