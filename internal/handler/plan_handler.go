package handler

import (
	"net/http"
	"time"

	"planner/internal/gateway"
	"planner/internal/model"
	"planner/internal/store"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	store *store.Store
}

func NewPlanHandler(st *store.Store) *PlanHandler {
	return &PlanHandler{store: st}
}

// PlanView is a plan with its derived hours.
type PlanView struct {
	model.Plan
	FreeHours  float64 `json:"free_hours"`
	Overbooked bool    `json:"overbooked"`
}

func newPlanView(p model.Plan) PlanView {
	return PlanView{Plan: p, FreeHours: p.FreeHours(), Overbooked: p.Overbooked()}
}

func validDate(s string) bool {
	_, err := time.Parse(model.DateLayout, s)
	return err == nil
}

// List godoc
// @Summary      List plans
// @Tags         plans
// @Produce      json
// @Param        start_date  query     string  false  "First day (YYYY-MM-DD)"
// @Param        end_date    query     string  false  "Last day (YYYY-MM-DD)"
// @Success      200         {array}   PlanView
// @Failure      400         {object}  map[string]string
// @Router       /plans [get]
// @Security     BearerAuth
func (h *PlanHandler) List(c *gin.Context) {
	r := gateway.PlanRange{StartDate: c.Query("start_date"), EndDate: c.Query("end_date")}
	for _, d := range []string{r.StartDate, r.EndDate} {
		if d != "" && !validDate(d) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, expected YYYY-MM-DD"})
			return
		}
	}

	if err := h.store.FetchPlans(c.Request.Context(), r); err != nil {
		respondError(c, err)
		return
	}
	plans := h.store.Plans()
	out := make([]PlanView, 0, len(plans))
	for _, p := range plans {
		out = append(out, newPlanView(p))
	}
	c.JSON(http.StatusOK, out)
}

// Get godoc
// @Summary      Plan of a day
// @Tags         plans
// @Produce      json
// @Param        date  path      string  true  "Day (YYYY-MM-DD)"
// @Success      200   {object}  PlanView
// @Failure      404   {object}  map[string]string
// @Router       /plans/{date} [get]
// @Security     BearerAuth
func (h *PlanHandler) Get(c *gin.Context) {
	date := c.Param("date")
	if !validDate(date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, expected YYYY-MM-DD"})
		return
	}
	p, err := h.store.FetchPlan(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPlanView(p))
}

// Save godoc
// @Summary      Save the plan of a day
// @Description  Updates the day's fixed hours, creating the plan when the day has none
// @Tags         plans
// @Accept       json
// @Produce      json
// @Param        date   path      string            true  "Day (YYYY-MM-DD)"
// @Param        hours  body      model.PlanUpdate  true  "Fixed hours"
// @Success      200    {object}  PlanView
// @Failure      400    {object}  map[string]string
// @Router       /plans/{date} [put]
// @Security     BearerAuth
func (h *PlanHandler) Save(c *gin.Context) {
	date := c.Param("date")
	if !validDate(date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, expected YYYY-MM-DD"})
		return
	}

	// Parse request body
	var req model.PlanUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, v := range []*float64{req.SleepTime, req.CommuteTime, req.WorkTime} {
		if v != nil && (*v < 0 || *v > model.HoursPerDay) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Hours must be between 0 and 24"})
			return
		}
	}

	p, err := h.store.SavePlan(c.Request.Context(), date, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPlanView(p))
}
