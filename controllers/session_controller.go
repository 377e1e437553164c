package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studytrack/services"
)

type SessionController struct {
	Base
	Svc *services.SessionService
}

func NewSessionController(b Base, svc *services.SessionService) *SessionController {
	return &SessionController{Base: b, Svc: svc}
}

// GET /sessions?date=YYYY-MM-DD (omit date for the newest page)
func (h *SessionController) List(c *gin.Context) {
	uid, ok := h.user(c)
	if !ok {
		return
	}
	sessions, err := h.Svc.List(c.Request.Context(), uid, c.Query("date"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// POST /sessions
func (h *SessionController) Create(c *gin.Context) {
	uid, ok := h.user(c)
	if !ok {
		return
	}
	today, ok := h.today(c)
	if !ok {
		return
	}
	var in services.SessionInput
	if !h.bind(c, &in) {
		return
	}
	ss, err := h.Svc.Create(c.Request.Context(), uid, today, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ss)
}

// PUT /sessions/:id
func (h *SessionController) Update(c *gin.Context) {
	uid, ok := h.user(c)
	if !ok {
		return
	}
	var in services.SessionUpdate
	if !h.bind(c, &in) {
		return
	}
	if err := h.Svc.Update(c.Request.Context(), uid, c.Param("id"), in); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /sessions/:id
func (h *SessionController) Delete(c *gin.Context) {
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
