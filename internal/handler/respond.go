package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"planner/internal/board"
	"planner/internal/gateway"
	"planner/internal/session"
	"planner/internal/store"

	"github.com/gin-gonic/gin"
)

// respondError translates a failure into the companion's error body.
// Upstream 4xx messages are relayed verbatim; 5xx and transport failures get
// the generic message.
func respondError(c *gin.Context, err error) {
	var apiErr *gateway.APIError
	switch {
	case errors.As(err, &apiErr):
		c.JSON(gateway.HTTPStatus(err), gin.H{"error": apiErr.Message})
	case errors.Is(err, store.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, store.ErrBoardNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
	case errors.Is(err, store.ErrTeamNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
	case errors.Is(err, store.ErrNoBoard):
		c.JSON(http.StatusConflict, gin.H{"error": "No board selected"})
	case errors.Is(err, board.ErrAlreadyDragging):
		c.JSON(http.StatusConflict, gin.H{"error": "A drag is already in progress"})
	case errors.Is(err, board.ErrNotDragging):
		c.JSON(http.StatusConflict, gin.H{"error": "No drag in progress"})
	case errors.Is(err, board.ErrUnknownTarget):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Drop target is not on the board"})
	case errors.Is(err, session.ErrSuperseded):
		c.JSON(http.StatusConflict, gin.H{"error": "Session changed during login"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "Request cancelled"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " format"})
		return 0, false
	}
	return id, true
}
