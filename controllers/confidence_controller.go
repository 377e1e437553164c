package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studytrack/services"
)

type ConfidenceController struct {
	Base
	Svc   *services.ConfidenceService
	Notes *services.NoteService
}

func NewConfidenceController(b Base, svc *services.ConfidenceService, notes *services.NoteService) *ConfidenceController {
	return &ConfidenceController{Base: b, Svc: svc, Notes: notes}
}

// GET /confidence?date=YYYY-MM-DD (omit date for the latest entry)
func (h *ConfidenceController) Get(c *gin.Context) {
	uid, ok := h.user(c)
	if !ok {
		return
	}
	entry, err := h.Svc.Get(c.Request.Context(), uid, c.Query("date"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// POST /confidence
func (h *ConfidenceController) Log(c *gin.Context) {
	uid, ok := h.user(c)
	if !ok {
		return
	}
	today, ok := h.today(c)
	if !ok {
		return
	}
	var in services.ConfidenceInput
	if !h.bind(c, &in) {
		return
	}
	entry, err := h.Svc.Log(c.Request.Context(), uid, today, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// GET /confidence/history
func (h *ConfidenceController) History(c *gin.Context) {
	uid, ok := h.user(c)
	if !ok {
		return
	}
	history, err := h.Svc.History(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history, "average": services.AverageConfidence(history)})
}

// GET /note
func (h *ConfidenceController) GetNote(c *gin.Context) {
	uid, ok := h.user(c)
	if !ok {
		return
	}
	note, err := h.Notes.Get(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": note})
}

// PUT /note
func (h *ConfidenceController) SaveNote(c *gin.Context) {
	uid, ok := h.user(c)
	if !ok {
		return
	}
	var body struct {
		Content string `json:"content"`
	}
	if !h.bind(c, &body) {
		return
	}
	if err := h.Notes.Save(c.Request.Context(), uid, body.Content); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
