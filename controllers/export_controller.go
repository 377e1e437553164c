package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studytrack/middlewares"
	"studytrack/services"
)

type ExportController struct {
	Base
	Export *services.ExportService
	Report *services.ReportService
}

func NewExportController(b Base, ex *services.ExportService, rep *services.ReportService) *ExportController {
	return &ExportController{Base: b, Export: ex, Report: rep}
}

// POST /export
func (h *ExportController) ExportBackup(c *gin.Context) {
	uid, ok := h.user(c)
	if !ok {
		return
	}
	location, err := h.Export.Export(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"location": location})
}

// POST /report/email?date=
func (h *ExportController) EmailReport(c *gin.Context) {
	uid, ok := h.user(c)
	if !ok {
		return
	}
	today, ok := h.today(c)
	if !ok {
		return
	}
	to := c.GetString(middlewares.EmailKey)
	if err := h.Report.Send(c.Request.Context(), uid, to, today); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "report sent", "to": to})
}
