package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"studytrack/controllers"
	"studytrack/middlewares"
	"studytrack/services"
	"studytrack/store"
)

// Deps is everything the router wires together. Uploader and Mailer may be
// nil, in which case export and e-mail reports answer 503.
type Deps struct {
	Store     store.Store
	Hub       *services.RealtimeHub
	Uploader  services.Uploader
	Mailer    services.Mailer
	JWTSecret []byte
	Location  *time.Location
	Log       *slog.Logger
	Registry  *prometheus.Registry
	Now       func() time.Time
}

func SetupRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Hub == nil {
		d.Hub = services.NewRealtimeHub(d.Log)
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}

	base := controllers.NewBase(d.Location, d.Log)
	if d.Now != nil {
		base.Now = d.Now
	}

	analytics := services.NewAnalyticsService(d.Store)
	goals := controllers.NewGoalController(base, services.NewGoalService(d.Store, d.Hub))
	sessions := controllers.NewSessionController(base, services.NewSessionService(d.Store, d.Hub))
	confidence := controllers.NewConfidenceController(base,
		services.NewConfidenceService(d.Store, d.Hub), services.NewNoteService(d.Store))
	stats := controllers.NewAnalyticsController(base, analytics)
	realtime := controllers.NewRealtimeController(base, d.Hub)
	export := controllers.NewExportController(base,
		services.NewExportService(d.Store, d.Uploader), services.NewReportService(analytics, d.Mailer))

	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(d.Log), middlewares.NewMetrics(d.Registry).Handler())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))

	api := r.Group("/")
	api.Use(middlewares.AuthMiddleware(d.JWTSecret))
	{
		api.GET("/goals", goals.List)
		api.POST("/goals", goals.Create)
		api.PUT("/goals/:id", goals.Update)
		api.DELETE("/goals/:id", goals.Delete)
		api.POST("/goals/:id/toggle", goals.Toggle)

		api.GET("/sessions", sessions.List)
		api.POST("/sessions", sessions.Create)
		api.PUT("/sessions/:id", sessions.Update)
		api.DELETE("/sessions/:id", sessions.Delete)

		api.GET("/confidence", confidence.Get)
		api.POST("/confidence", confidence.Log)
		api.GET("/confidence/history", confidence.History)
		api.GET("/note", confidence.GetNote)
		api.PUT("/note", confidence.SaveNote)

		api.GET("/stats/dashboard", stats.GetDashboard)
		api.GET("/stats/trend", stats.GetTrend)
		api.GET("/stats/subjects", stats.GetSubjects)
		api.GET("/stats/summary", stats.GetSummary)

		api.POST("/export", export.ExportBackup)
		api.POST("/report/email", export.EmailReport)

		api.GET("/ws", realtime.StatsWS)
	}

	return r
}
