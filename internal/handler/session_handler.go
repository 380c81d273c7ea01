package handler

import (
	"net/http"

	"planner/internal/board"
	"planner/internal/session"
	"planner/internal/store"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type SessionHandler struct {
	sess    *session.Session
	auth    session.Authenticator
	store   *store.Store
	tracker *board.Tracker
	logger  log.FieldLogger
}

func NewSessionHandler(sess *session.Session, auth session.Authenticator, st *store.Store, tracker *board.Tracker, logger log.FieldLogger) *SessionHandler {
	return &SessionHandler{sess: sess, auth: auth, store: st, tracker: tracker, logger: logger}
}

// LoginRequest accepts the form fields of the upstream login as well as JSON.
type LoginRequest struct {
	Email    string `form:"username" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// Login godoc
// @Summary      Log in
// @Description  Exchanges credentials for a token and confirms the profile
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        credentials  body      LoginRequest  true  "Credentials"
// @Success      200          {object}  session.Snapshot
// @Failure      400          {object}  map[string]string
// @Failure      401          {object}  map[string]string
// @Router       /session/login [post]
func (h *SessionHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	// Previous user's data must not leak into the new session
	h.tracker.Cancel()
	h.store.Reset()

	if _, err := h.sess.Login(c.Request.Context(), h.auth, req.Email, req.Password); err != nil {
		h.logger.WithError(err).WithField("email", req.Email).Info("login failed")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.sess.Snapshot())
}

// Status godoc
// @Summary      Session state
// @Tags         session
// @Produce      json
// @Success      200  {object}  session.Snapshot
// @Router       /session [get]
func (h *SessionHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.sess.Snapshot())
}

// Logout godoc
// @Summary      Log out
// @Description  Removes the persisted token and forgets all loaded data
// @Tags         session
// @Success      204
// @Router       /session/logout [post]
func (h *SessionHandler) Logout(c *gin.Context) {
	if err := h.sess.Logout(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	h.tracker.Cancel()
	h.store.Reset()
	c.Status(http.StatusNoContent)
}
