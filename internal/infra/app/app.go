package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/port"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/infra/config"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/infra/database"
	kafkainfra "github.com/pranavgawaii/smart-attendance-system-sub000/internal/infra/kafka"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/infra/logger"
	redisinfra "github.com/pranavgawaii/smart-attendance-system-sub000/internal/infra/redis"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/infra/telemetry"
	postgresrepo "github.com/pranavgawaii/smart-attendance-system-sub000/internal/repository/postgres"
	redisrepo "github.com/pranavgawaii/smart-attendance-system-sub000/internal/repository/redis"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/transport/http/middleware"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/transport/http/routes"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/usecase"
)

type Application struct {
	cfg       *config.AppConfig
	engine    *gin.Engine
	logger    *zap.Logger
	pool      *pgxpool.Pool
	redis     *redisinfra.Client
	scheduler *usecase.Scheduler
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics := telemetry.Attach()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)
	credentialCache := redisrepo.NewCredentialCache(redisClient.Client(), cfg.Redis.CredentialPrefix)

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(kafkaProducer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "attendance:rate-limit",
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	credentialService := usecase.NewCredentialService(
		repos.Credentials,
		credentialCache,
		cfg.Attendance.CodeLength,
		cfg.Attendance.GraceBuffer,
		cfg.Attendance.CheckinLinkBase,
		log,
	)

	scheduler := usecase.NewScheduler(credentialService, repos.Sessions, log).WithMetrics(metrics)

	sessionService := usecase.NewSessionService(repos.Sessions, scheduler, eventPublisher, cfg.Attendance.RefreshInterval, log)

	auditTrail := usecase.NewAuditTrail(cfg.Attendance.AuditTrailCapacity)

	attendanceService := usecase.NewAttendanceService(sessionService, credentialService, repos.Attendance, auditTrail, eventPublisher, log).
		WithReusePolicy(domain.ReusePolicyByName(cfg.Attendance.DeviceReusePolicy)).
		WithMetrics(metrics)

	// Re-arm credential loops for sessions that were active when the
	// previous process died. Must complete before the server accepts
	// submissions.
	if err := scheduler.Rehydrate(ctx); err != nil {
		scheduler.Close()
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("rehydrate scheduler: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Sessions:    sessionService,
			Credentials: credentialService,
			Attendance:  attendanceService,
		},
	})

	return &Application{
		cfg:       cfg,
		engine:    engine,
		logger:    log,
		pool:      pool,
		redis:     redisClient,
		scheduler: scheduler,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.scheduler != nil {
			a.scheduler.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting attendance API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.scheduler.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
