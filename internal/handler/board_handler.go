package handler

import (
	"net/http"

	"planner/internal/board"
	"planner/internal/model"
	"planner/internal/store"

	"github.com/gin-gonic/gin"
)

type BoardHandler struct {
	store *store.Store
}

func NewBoardHandler(st *store.Store) *BoardHandler {
	return &BoardHandler{store: st}
}

// List godoc
// @Summary      List boards
// @Description  Fetches the boards and keeps a valid one selected
// @Tags         boards
// @Produce      json
// @Success      200  {array}   model.Board
// @Failure      502  {object}  map[string]string
// @Router       /boards [get]
// @Security     BearerAuth
func (h *BoardHandler) List(c *gin.Context) {
	if err := h.store.FetchBoards(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.store.Boards())
}

// Create godoc
// @Summary      Create a board
// @Tags         boards
// @Accept       json
// @Produce      json
// @Param        board  body      model.BoardCreate  true  "Board"
// @Success      201    {object}  model.Board
// @Failure      400    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Router       /boards [post]
// @Security     BearerAuth
func (h *BoardHandler) Create(c *gin.Context) {
	// Parse request body
	var req model.BoardCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.store.CreateBoard(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// Select godoc
// @Summary      Select a board
// @Description  Loads the board with its columns and makes it current
// @Tags         boards
// @Produce      json
// @Param        id   path      int  true  "Board ID"
// @Success      200  {object}  model.Board
// @Failure      404  {object}  map[string]string
// @Router       /boards/{id}/select [post]
// @Security     BearerAuth
func (h *BoardHandler) Select(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := h.store.SelectBoard(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// Delete godoc
// @Summary      Delete a board
// @Tags         boards
// @Param        id  path  int  true  "Board ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /boards/{id} [delete]
// @Security     BearerAuth
func (h *BoardHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteBoard(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateGroup godoc
// @Summary      Add a column
// @Description  Appends a column to a loaded board without changing the selection
// @Tags         boards
// @Accept       json
// @Produce      json
// @Param        id     path      int                true  "Board ID"
// @Param        group  body      model.GroupCreate  true  "Column"
// @Success      201    {object}  model.Group
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /boards/{id}/groups [post]
// @Security     BearerAuth
func (h *BoardHandler) CreateGroup(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	// Parse request body
	var req model.GroupCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, err := h.store.CreateGroup(c.Request.Context(), id, req.Name, req.Color)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

// View godoc
// @Summary      Board view
// @Description  Columns of the current board with their tasks, in column order
// @Tags         boards
// @Produce      json
// @Success      200  {object}  board.View
// @Router       /view [get]
// @Security     BearerAuth
func (h *BoardHandler) View(c *gin.Context) {
	c.JSON(http.StatusOK, board.BuildView(h.store.Boards(), h.store.CurrentBoard(), h.store.Tasks()))
}
