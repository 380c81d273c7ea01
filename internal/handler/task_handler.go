package handler

import (
	"net/http"

	"planner/internal/gateway"
	"planner/internal/model"
	"planner/internal/store"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	store *store.Store
}

func NewTaskHandler(st *store.Store) *TaskHandler {
	return &TaskHandler{store: st}
}

type MoveTaskRequest struct {
	GroupID int `json:"group_id" binding:"required"`
}

// List godoc
// @Summary      List tasks
// @Description  Fetches tasks, optionally filtered by date and status
// @Tags         tasks
// @Produce      json
// @Param        date    query     string  false  "Day (YYYY-MM-DD)"
// @Param        status  query     string  false  "not_started, in_progress, done or postponed"
// @Success      200     {array}   model.Task
// @Failure      400     {object}  map[string]string
// @Router       /tasks [get]
// @Security     BearerAuth
func (h *TaskHandler) List(c *gin.Context) {
	filter := gateway.TaskFilter{Date: c.Query("date")}
	if s := c.Query("status"); s != "" {
		status := model.TaskStatus(s)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		filter.Status = status
	}

	if err := h.store.FetchTasks(c.Request.Context(), filter); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.store.Tasks())
}

// Get godoc
// @Summary      Get a loaded task
// @Tags         tasks
// @Produce      json
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  model.Task
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [get]
// @Security     BearerAuth
func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	task, found := h.store.Task(id)
	if !found {
		respondError(c, store.ErrTaskNotFound)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Create godoc
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        task  body      model.TaskCreate  true  "Task"
// @Success      201   {object}  model.Task
// @Failure      400   {object}  map[string]string
// @Router       /tasks [post]
// @Security     BearerAuth
func (h *TaskHandler) Create(c *gin.Context) {
	// Parse request body
	var req model.TaskCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != "" && !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}
	if req.Priority != "" && !req.Priority.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	}

	task, err := h.store.CreateTask(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// Update godoc
// @Summary      Update a task
// @Description  Applied optimistically; rolled back when the server rejects it
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id     path      int               true  "Task ID"
// @Param        patch  body      model.TaskUpdate  true  "Fields to change"
// @Success      200    {object}  model.Task
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /tasks/{id} [patch]
// @Security     BearerAuth
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	// Parse request body
	var patch model.TaskUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if patch.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}
	if patch.Status != nil && !patch.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	}

	task, err := h.store.UpdateTask(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Complete godoc
// @Summary      Mark a task done
// @Tags         tasks
// @Produce      json
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  model.Task
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id}/complete [post]
// @Security     BearerAuth
func (h *TaskHandler) Complete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	task, err := h.store.CompleteTask(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Move godoc
// @Summary      Move a task to another column
// @Description  Persists a move; the target column must belong to the current board
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      int              true  "Task ID"
// @Param        move  body      MoveTaskRequest  true  "Target column"
// @Success      200   {object}  model.Task
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /tasks/{id}/move [post]
// @Security     BearerAuth
func (h *TaskHandler) Move(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	// Parse request body
	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Check the column is on the current board
	current := h.store.CurrentBoard()
	if current == nil {
		respondError(c, store.ErrNoBoard)
		return
	}
	if _, found := current.Group(req.GroupID); !found {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Column is not on the current board"})
		return
	}

	task, err := h.store.MoveTask(c.Request.Context(), id, req.GroupID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete godoc
// @Summary      Delete a task
// @Tags         tasks
// @Param        id  path  int  true  "Task ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [delete]
// @Security     BearerAuth
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteTask(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Transitions godoc
// @Summary      Pending optimistic changes
// @Tags         tasks
// @Produce      json
// @Success      200  {array}  store.Transition
// @Router       /tasks/transitions [get]
// @Security     BearerAuth
func (h *TaskHandler) Transitions(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Pending())
}
