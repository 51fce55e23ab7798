package router

import (
	"github.com/gin-gonic/gin"

	"github.com/zeenat-khan28/sports-dbms/internal/handler"
	"github.com/zeenat-khan28/sports-dbms/internal/middleware"
	"github.com/zeenat-khan28/sports-dbms/internal/service"
)

// Handlers bundles every HTTP handler wired into the router.
type Handlers struct {
	Auth          *handler.AuthHandler
	Submissions   *handler.SubmissionHandler
	Participation *handler.ParticipationHandler
	Events        *handler.EventHandler
	Attendance    *handler.AttendanceHandler
	Analytics     *handler.AnalyticsHandler
	Exports       *handler.ExportHandler
	Email         *handler.EmailHandler
	Metrics       *handler.MetricsHandler
}

// Setup registers all API routes. Student-facing endpoints (submission and
// participation creation, event browsing) are open; administrative endpoints
// require a valid admin token.
func Setup(r *gin.Engine, prefix string, h Handlers, auth *service.AuthService) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/login", h.Auth.Login)
		authRoutes.POST("/refresh", h.Auth.Refresh)
		authRoutes.GET("/me", middleware.JWT(auth), h.Auth.Me)
	}

	submissions := api.Group("/submissions")
	{
		submissions.POST("", h.Submissions.Create)

		admin := submissions.Group("", middleware.JWT(auth))
		admin.GET("", h.Submissions.List)
		admin.GET("/:id", h.Submissions.Get)
		admin.POST("/:id/approve", h.Submissions.Approve)
		admin.POST("/:id/reject", h.Submissions.Reject)
		admin.DELETE("/:id", h.Submissions.Delete)
	}

	participation := api.Group("/participation")
	{
		participation.POST("", h.Participation.Create)

		admin := participation.Group("", middleware.JWT(auth))
		admin.GET("", h.Participation.List)
		admin.POST("/:id/decide", h.Participation.Decide)
	}

	events := api.Group("/events")
	{
		events.GET("", h.Events.List)
		events.GET("/:id", h.Events.Get)

		admin := events.Group("", middleware.JWT(auth))
		admin.POST("", h.Events.Create)
		admin.PUT("/:id", h.Events.Update)
		admin.DELETE("/:id", h.Events.Delete)
		admin.GET("/:id/attendance", h.Attendance.Roster)
		admin.POST("/:id/attendance", h.Attendance.Save)
	}

	analytics := api.Group("/analytics", middleware.JWT(auth))
	{
		analytics.GET("/overview", h.Analytics.Overview)
		analytics.GET("/participation", h.Analytics.Participation)
		analytics.GET("/events", h.Analytics.Events)
		analytics.GET("/attendance", h.Analytics.Attendance)
	}

	exports := api.Group("/export", middleware.JWT(auth))
	{
		exports.GET("/approved", h.Exports.ApprovedStudents)
		exports.GET("/events/:id/participants", h.Exports.EventParticipants)
	}

	email := api.Group("/email", middleware.JWT(auth))
	{
		email.POST("/send", h.Email.Send)
		email.GET("/logs", h.Email.Logs)
	}
}
