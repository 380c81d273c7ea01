package handler

import (
	"errors"
	"io"
	"net/http"

	"planner/internal/board"
	"planner/internal/store"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// DragHandler drives the drag tracker against the store's current board. It
// only computes drops; persisting a move is a separate task call.
type DragHandler struct {
	store   *store.Store
	tracker *board.Tracker
	logger  log.FieldLogger
}

func NewDragHandler(st *store.Store, tracker *board.Tracker, logger log.FieldLogger) *DragHandler {
	return &DragHandler{store: st, tracker: tracker, logger: logger}
}

type DragStartRequest struct {
	Kind board.TargetKind `json:"kind" binding:"required,oneof=column task"`
	ID   int              `json:"id" binding:"required"`
}

type DragEndRequest struct {
	Target *board.Target `json:"target"`
}

func (h *DragHandler) snapshot() (board.Snapshot, error) {
	current := h.store.CurrentBoard()
	if current == nil {
		return board.Snapshot{}, store.ErrNoBoard
	}
	return board.Snapshot{Tasks: h.store.Tasks(), Groups: current.Groups}, nil
}

// Start godoc
// @Summary      Start dragging
// @Tags         drag
// @Accept       json
// @Produce      json
// @Param        item  body      DragStartRequest  true  "Dragged item"
// @Success      200   {object}  board.DragState
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /drag/start [post]
// @Security     BearerAuth
func (h *DragHandler) Start(c *gin.Context) {
	var req DragStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var err error
	switch req.Kind {
	case board.TargetTask:
		task, found := h.store.Task(req.ID)
		if !found {
			respondError(c, store.ErrTaskNotFound)
			return
		}
		err = h.tracker.StartTask(task)
	case board.TargetColumn:
		current := h.store.CurrentBoard()
		if current == nil {
			respondError(c, store.ErrNoBoard)
			return
		}
		group, found := current.Group(req.ID)
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "Column not found"})
			return
		}
		err = h.tracker.StartColumn(group)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.tracker.State())
}

// Over godoc
// @Summary      Hover over a target
// @Description  Records the candidate column; the board is not changed
// @Tags         drag
// @Accept       json
// @Produce      json
// @Param        target  body      board.Target  true  "Hovered target"
// @Success      200     {object}  board.DragState
// @Failure      400     {object}  map[string]string
// @Failure      409     {object}  map[string]string
// @Router       /drag/over [post]
// @Security     BearerAuth
func (h *DragHandler) Over(c *gin.Context) {
	var target board.Target
	if err := c.ShouldBindJSON(&target); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snap, err := h.snapshot()
	if err != nil {
		respondError(c, err)
		return
	}
	if _, err := h.tracker.Over(target, snap); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.tracker.State())
}

// End godoc
// @Summary      Drop
// @Description  Ends the gesture and returns the computed destination. A missing target means the item was released outside the board.
// @Tags         drag
// @Accept       json
// @Produce      json
// @Param        drop  body      DragEndRequest  false  "Drop target"
// @Success      200   {object}  board.Drop
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /drag/end [post]
// @Security     BearerAuth
func (h *DragHandler) End(c *gin.Context) {
	// An empty body means the item was released outside the board
	var req DragEndRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	snap, err := h.snapshot()
	if err != nil {
		// Nothing to resolve against; the gesture still ends
		h.tracker.Cancel()
		respondError(c, err)
		return
	}

	drop, err := h.tracker.End(req.Target, snap)
	if err != nil {
		respondError(c, err)
		return
	}
	h.logger.WithFields(log.Fields{
		"mode":      drop.Mode,
		"task_id":   drop.TaskID,
		"to_group":  drop.ToGroupID,
		"moved":     drop.Moved,
		"cancelled": drop.Cancelled,
	}).Debug("drop computed")
	c.JSON(http.StatusOK, drop)
}

// Cancel godoc
// @Summary      Cancel the gesture
// @Tags         drag
// @Success      204
// @Router       /drag/cancel [post]
// @Security     BearerAuth
func (h *DragHandler) Cancel(c *gin.Context) {
	h.tracker.Cancel()
	c.Status(http.StatusNoContent)
}

// State godoc
// @Summary      Drag state
// @Tags         drag
// @Produce      json
// @Success      200  {object}  board.DragState
// @Router       /drag [get]
// @Security     BearerAuth
func (h *DragHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.State())
}
