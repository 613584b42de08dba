package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"stackedwins/api"
	"stackedwins/auth"
	"stackedwins/config"
	"stackedwins/database"
	"stackedwins/logger"
	"stackedwins/middleware"
	"stackedwins/repository"
	"stackedwins/services"
	"stackedwins/telemetry"
)

// Repositories groups the persistence layer.
type Repositories struct {
	Assessments repository.AssessmentRepository
	Plans       repository.PlanRepository
	CheckIns    repository.CheckInRepository
	Metrics     repository.MetricsRepository
	Journal     repository.JournalRepository
	Feedback    repository.FeedbackRepository
	Coach       repository.CoachRepository
}

// App owns every long-lived dependency of the process.
type App struct {
	Config    *config.Config
	Log       *logger.Logger
	DB        *gorm.DB
	Repos     Repositories
	Services  api.Services
	Metrics   services.MetricsService
	Scheduler services.SchedulerService

	redis *redis.Client
}

// New opens the database, migrates it and builds the service graph.
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	db, err := database.Init(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	a := &App{Config: cfg, Log: log, DB: db}
	a.Repos = Repositories{
		Assessments: repository.NewAssessmentRepository(db),
		Plans:       repository.NewPlanRepository(db),
		CheckIns:    repository.NewCheckInRepository(db),
		Metrics:     repository.NewMetricsRepository(db),
		Journal:     repository.NewJournalRepository(db),
		Feedback:    repository.NewFeedbackRepository(db),
		Coach:       repository.NewCoachRepository(db),
	}
	a.wireServices()
	return a, nil
}

func (a *App) wireServices() {
	cfg, log, r := a.Config, a.Log, a.Repos
	loc := cfg.Location()
	now := services.Clock(time.Now)
	llm := services.NewOpenAICompleter(cfg.LLM)
	llmOpts := services.PlanOptions{Temperature: cfg.LLM.Temperature, Timeout: cfg.LLM.Timeout, Location: loc}

	a.Metrics = services.NewMetricsService(r.CheckIns, r.Metrics, now, log)
	baselines := services.NewBaselineService(r.Assessments, r.CheckIns, now, log)

	a.Services = api.Services{
		Assessments: services.NewAssessmentService(r.Assessments, now, log),
		Baselines:   baselines,
		Plans:       services.NewPlanService(r.Plans, r.Assessments, baselines, llm, llmOpts, now, log),
		Tasks:       services.NewTaskService(r.Plans, r.CheckIns, a.Metrics, now, loc, log),
		CheckIns:    services.NewCheckInService(r.CheckIns, a.Metrics, now, loc, log),
		Progress:    services.NewProgressService(baselines, a.Metrics, r.CheckIns, now, log),
		Export:      services.NewExportService(r.CheckIns, log),
		Journal:     services.NewJournalService(r.Journal, r.Plans, log),
		Feedback:    services.NewFeedbackService(r.Feedback, log),
		Coach:       services.NewCoachService(r.Coach, r.Plans, r.CheckIns, r.Metrics, baselines, llm, llmOpts, now, log),
	}
	a.Scheduler = services.NewSchedulerService(a.Metrics, cfg.Scheduler.MetricsRefreshInterval, loc, log)
}

// limiter uses redis when configured so limits hold across replicas.
func (a *App) limiter() middleware.Limiter {
	rl := a.Config.RateLimit
	if rl.RedisAddr == "" {
		return middleware.NewMemoryLimiter(rl.Requests, rl.Window)
	}
	a.redis = redis.NewClient(&redis.Options{Addr: rl.RedisAddr})
	a.Log.Info("Rate limiting backed by redis", "addr", rl.RedisAddr)
	return middleware.NewRedisLimiter(a.redis, rl.Requests, rl.Window)
}

// Router builds the HTTP handler for the configured surface.
func (a *App) Router() (*gin.Engine, error) {
	verifier, err := auth.NewVerifier(a.Config.Auth, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		return nil, err
	}
	if a.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	opts := api.RouterOptions{
		CORSOrigins:        a.Config.Server.CORSOrigins,
		ExposeErrorDetails: !a.Config.IsProduction(),
		CoachEnabled:       a.Config.Coach.Enabled,
		Tracing:            a.Config.Telemetry.Enabled,
		ServiceName:        a.Config.Telemetry.ServiceName,
	}
	return api.NewRouter(api.NewAPIHandler(a.Services), verifier, a.limiter(), opts, a.Log), nil
}

// Serve runs the HTTP server and the scheduler until ctx is cancelled, then
// shuts both down.
func (a *App) Serve(ctx context.Context) error {
	shutdownTracing, err := telemetry.Init(ctx, a.Config.Telemetry, a.Config.App.Env, a.Log)
	if err != nil {
		return err
	}
	router, err := a.Router()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if a.Config.Scheduler.Enabled {
		if err := a.Scheduler.Start(); err != nil {
			return err
		}
		defer a.Scheduler.Stop()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("Server starting", "port", a.Config.Server.Port, "env", a.Config.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if terr := shutdownTracing(shutdownCtx); terr != nil {
			a.Log.Warn("Tracer shutdown failed", "error", terr)
		}
		return err
	})
	return g.Wait()
}

// Close releases the database and redis connections.
func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	a.Log.Sync()
}
