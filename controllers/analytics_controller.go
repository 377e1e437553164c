// controllers/analytics_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studytrack/services"
)

type AnalyticsController struct {
	Base
	Svc *services.AnalyticsService
}

func NewAnalyticsController(b Base, svc *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Base: b, Svc: svc}
}

// GET /stats/dashboard?date=
func (h *AnalyticsController) GetDashboard(c *gin.Context) {
	uid, ok := h.user(c)
	if !ok {
		return
	}
	today, ok := h.today(c)
	if !ok {
		return
	}
	out, err := h.Svc.Dashboard(c.Request.Context(), uid, today)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /stats/trend?days=14&date=
func (h *AnalyticsController) GetTrend(c *gin.Context) {
	uid, ok := h.user(c)
	if !ok {
		return
	}
	today, ok := h.today(c)
	if !ok {
		return
	}
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(services.ShortTrendDays)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be an integer"})
		return
	}
	out, err := h.Svc.Trend(c.Request.Context(), uid, today, days)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": today, "days": days, "points": out})
}

// GET /stats/subjects?window=today|all|<days>&date=
func (h *AnalyticsController) GetSubjects(c *gin.Context) {
	uid, ok := h.user(c)
	if !ok {
		return
	}
	today, ok := h.today(c)
	if !ok {
		return
	}
	var w services.Window
	switch v := c.DefaultQuery("window", "today"); v {
	case "today":
		w = services.DayWindow(today)
	case "all":
		w = services.AllTime()
	default:
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "window must be today, all or a positive number of days"})
			return
		}
		w = services.LastDays(today, n)
	}
	out, err := h.Svc.Subjects(c.Request.Context(), uid, w)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"window": w, "subjects": out})
}

// GET /stats/summary?date=
func (h *AnalyticsController) GetSummary(c *gin.Context) {
	uid, ok := h.user(c)
	if !ok {
		return
	}
	today, ok := h.today(c)
	if !ok {
		return
	}
	out, err := h.Svc.Summary(c.Request.Context(), uid, today)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
