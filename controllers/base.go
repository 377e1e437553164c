package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"studytrack/middlewares"
	"studytrack/models"
	"studytrack/services"
	"studytrack/store"
)

// Base carries what every controller needs to resolve "today" and report
// failures consistently.
type Base struct {
	Loc *time.Location
	Log *slog.Logger
	Now func() time.Time
}

func NewBase(loc *time.Location, log *slog.Logger) Base {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = slog.Default()
	}
	return Base{Loc: loc, Log: log, Now: time.Now}
}

func (b Base) user(c *gin.Context) (string, bool) {
	uid, ok := middlewares.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return uid, ok
}

// today resolves the reference day: the date query parameter when given,
// otherwise the server clock in the configured timezone.
func (b Base) today(c *gin.Context) (string, bool) {
	if v := c.Query("date"); v != "" {
		d := models.NormalizeDay(v)
		if d == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format. Use YYYY-MM-DD"})
			return "", false
		}
		return d, true
	}
	return models.DayOf(b.Now(), b.Loc), true
}

func (b Base) fail(c *gin.Context, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "problems": ve.Problems})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrExportDisabled), errors.Is(err, services.ErrReportDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		b.Log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (b Base) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
