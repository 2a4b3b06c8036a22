package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/infra/config"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/transport/http/handlers"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/transport/http/middleware"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Sessions    *usecase.SessionService
	Credentials *usecase.CredentialService
	Attendance  *usecase.AttendanceService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.App.AllowedOrigins))

	if httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{}); err == nil {
		r.Use(httpMetrics.Handler())
	} else {
		deps.Logger.Warn("http metrics disabled", zap.Error(err))
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)

	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}

	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		sessionHandler := handlers.NewSessionHandler(deps.Services.Sessions, deps.Config.Attendance.MinRefreshInterval)
		sessionGroup := api.Group("/sessions")
		sessionHandler.RegisterRoutes(sessionGroup)

		attendanceHandler := handlers.NewAttendanceHandler(deps.Services.Attendance)

		submitMiddlewares := buildSubmitMiddlewares(deps)
		submitMiddlewares = append(submitMiddlewares, middleware.RequireIdentity(deps.Config.Identity.TokenSecret, deps.Config.Identity.Issuer))
		submitHandlers := append(submitMiddlewares, attendanceHandler.Submit)
		api.POST("/attendance/submit", submitHandlers...)
		api.PATCH("/attendance/:record_id/status", attendanceHandler.UpdateStatus)

		displayHandler := handlers.NewDisplayHandler(deps.Services.Sessions, deps.Services.Credentials, deps.Services.Attendance)
		alertHandler := handlers.NewAlertHandler(deps.Services.Attendance)

		eventGroup := api.Group("/events/:event_id")
		eventGroup.GET("/display", displayHandler.Show)
		eventGroup.GET("/attendance", attendanceHandler.Recent)
		eventGroup.GET("/alerts", alertHandler.List)

		api.GET("/attendees/:attendee_id/attendance", attendanceHandler.History)
	}

	return r
}

func buildSubmitMiddlewares(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.RateLimit.SubmitMaxAttempts
	if limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       "attendance_submit_ip",
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
