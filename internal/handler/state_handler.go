package handler

import (
	"net/http"

	"planner/internal/store"

	"github.com/gin-gonic/gin"
)

type StateHandler struct {
	store *store.Store
}

func NewStateHandler(st *store.Store) *StateHandler {
	return &StateHandler{store: st}
}

// Refresh godoc
// @Summary      Reload everything
// @Description  Fetches boards, tasks, teams and plans concurrently
// @Tags         state
// @Produce      json
// @Success      200  {object}  store.Summary
// @Failure      502  {object}  map[string]string
// @Router       /refresh [post]
// @Security     BearerAuth
func (h *StateHandler) Refresh(c *gin.Context) {
	if err := h.store.Refresh(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.store.Summary())
}

// Summary godoc
// @Summary      Load status per collection
// @Tags         state
// @Produce      json
// @Success      200  {object}  store.Summary
// @Router       /summary [get]
// @Security     BearerAuth
func (h *StateHandler) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Summary())
}

// Notices godoc
// @Summary      Drain notices
// @Description  Returns and clears the queued notices, oldest first
// @Tags         state
// @Produce      json
// @Success      200  {array}  store.Notice
// @Router       /notices [get]
// @Security     BearerAuth
func (h *StateHandler) Notices(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Notices())
}
