package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studytrack/services"
)

type GoalController struct {
	Base
	Svc *services.GoalService
}

func NewGoalController(b Base, svc *services.GoalService) *GoalController {
	return &GoalController{Base: b, Svc: svc}
}

// GET /goals?date=YYYY-MM-DD
func (h *GoalController) List(c *gin.Context) {
	uid, ok := h.user(c)
	if !ok {
		return
	}
	today, ok := h.today(c)
	if !ok {
		return
	}
	goals, err := h.Svc.Today(c.Request.Context(), uid, today)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": today, "goals": goals})
}

// POST /goals
func (h *GoalController) Create(c *gin.Context) {
	uid, ok := h.user(c)
	if !ok {
		return
	}
	today, ok := h.today(c)
	if !ok {
		return
	}
	var in services.GoalInput
	if !h.bind(c, &in) {
		return
	}
	goal, err := h.Svc.Create(c.Request.Context(), uid, today, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, goal)
}

// PUT /goals/:id
func (h *GoalController) Update(c *gin.Context) {
	uid, ok := h.user(c)
	if !ok {
		return
	}
	var in services.GoalUpdate
	if !h.bind(c, &in) {
		return
	}
	if err := h.Svc.Update(c.Request.Context(), uid, c.Param("id"), in); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /goals/:id
func (h *GoalController) Delete(c *gin.Context) {
	uid, ok := h.user(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type toggleReq struct {
	// Completed is the state the client currently shows.
	Completed *bool `json:"completed" binding:"required"`
}

// POST /goals/:id/toggle
func (h *GoalController) Toggle(c *gin.Context) {
	uid, ok := h.user(c)
	if !ok {
		return
	}
	today, ok := h.today(c)
	if !ok {
		return
	}
	var req toggleReq
	if !h.bind(c, &req) {
		return
	}
	if err := h.Svc.Toggle(c.Request.Context(), uid, c.Param("id"), *req.Completed, today); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
