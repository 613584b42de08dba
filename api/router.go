package api

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"stackedwins/auth"
	"stackedwins/logger"
	"stackedwins/middleware"
)

// RouterOptions selects the optional parts of the HTTP surface.
type RouterOptions struct {
	CORSOrigins        []string
	ExposeErrorDetails bool
	CoachEnabled       bool
	Tracing            bool
	ServiceName        string
}

var healthPaths = []string{"/health", "/api/health"}

// NewRouter builds the gin engine with the middleware chain and every route.
func NewRouter(h *APIHandler, verifier auth.Verifier, limiter middleware.Limiter, opts RouterOptions, log *logger.Logger) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies(nil)

	if opts.Tracing {
		r.Use(otelgin.Middleware(opts.ServiceName))
	}
	r.Use(middleware.RequestContext(log, opts.ExposeErrorDetails))
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Cors(opts.CORSOrigins))
	if limiter != nil {
		r.Use(middleware.RateLimit(limiter, healthPaths...))
	}

	for _, p := range healthPaths {
		r.GET(p, h.HealthHandler)
	}
	r.NoRoute(h.NotFoundHandler)

	apiGroup := r.Group("/api", middleware.Authenticate(verifier))
	{
		assessment := apiGroup.Group("/assessment")
		{
			assessment.POST("", h.SubmitAssessmentHandler)
			assessment.GET("", h.GetAssessmentHandler)
			assessment.GET("/reassessment", h.ReassessmentHandler)
		}

		plan := apiGroup.Group("/plan")
		{
			plan.POST("/generate", h.GeneratePlanHandler)
			plan.GET("/current", h.GetCurrentPlanHandler)
		}

		tasks := apiGroup.Group("/tasks")
		{
			tasks.GET("/today", h.TodayTasksHandler)
			tasks.POST("/complete", h.CompleteTaskHandler)
			tasks.PUT("/adjust", h.AdjustTasksHandler)
		}

		checkIn := apiGroup.Group("/checkin")
		{
			checkIn.POST("", h.SubmitCheckInHandler)
			checkIn.GET("/history", h.CheckInHistoryHandler)
			checkIn.GET("/export", h.ExportCheckInsHandler)
		}

		progress := apiGroup.Group("/progress")
		{
			progress.GET("/dashboard", h.DashboardHandler)
			progress.GET("/metrics", h.MetricsHandler)
		}

		journal := apiGroup.Group("/journal")
		{
			journal.POST("", h.CreateJournalHandler)
			journal.GET("", h.ListJournalHandler)
			journal.GET("/:id", h.GetJournalHandler)
			journal.PUT("/:id", h.UpdateJournalHandler)
			journal.DELETE("/:id", h.DeleteJournalHandler)
		}

		feedback := apiGroup.Group("/feedback")
		{
			feedback.POST("", h.SubmitFeedbackHandler)
			feedback.GET("", h.ListFeedbackHandler)
		}

		if opts.CoachEnabled {
			coach := apiGroup.Group("/coach")
			{
				coach.POST("/chat", h.CoachChatHandler)
				coach.GET("/history", h.CoachHistoryHandler)
			}
		}
	}
	return r
}
