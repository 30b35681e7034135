package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/linguaops/classtrack-api/api/swagger"
	"github.com/linguaops/classtrack-api/internal/handler"
	"github.com/linguaops/classtrack-api/internal/middleware"
	"github.com/linguaops/classtrack-api/internal/models"
	"github.com/linguaops/classtrack-api/internal/repository"
	"github.com/linguaops/classtrack-api/internal/service"
	"github.com/linguaops/classtrack-api/pkg/cache"
	"github.com/linguaops/classtrack-api/pkg/config"
	"github.com/linguaops/classtrack-api/pkg/database"
	"github.com/linguaops/classtrack-api/pkg/jobs"
	"github.com/linguaops/classtrack-api/pkg/logger"
	corsmiddleware "github.com/linguaops/classtrack-api/pkg/middleware/cors"
	reqidmiddleware "github.com/linguaops/classtrack-api/pkg/middleware/requestid"
	"github.com/linguaops/classtrack-api/pkg/recordstore"
	"github.com/linguaops/classtrack-api/pkg/storage"
)

// @title ClassTrack API
// @version 1.0.0
// @description Classroom operations backend for language schools
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := buildStore(ctx, cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init record store", "error", err)
	}

	metricsSvc := service.NewMetricsService()
	store.SetSaveObserver(metricsSvc.ObserveStoreSave)

	var cacheRepo service.CacheRepository
	if cfg.Dashboard.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard caching disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cacheRepo != nil)

	validate := validator.New()

	// Repositories over the shared record store.
	userRepo := repository.NewUserRepository(store)
	studentRepo := repository.NewStudentRepository(store)
	classRepo := repository.NewClassRepository(store)
	sessionRepo := repository.NewSessionRepository(store)
	attendanceRepo := repository.NewAttendanceRepository(store)
	noteRepo := repository.NewNoteRepository(store)
	metricRepo := repository.NewMetricRepository(store)
	requestRepo := repository.NewRequestRepository(store)
	reportRepo := repository.NewReportRepository(store)
	exportRepo := repository.NewExportRepository(store)
	configRepo := repository.NewConfigRepository(store)
	photoRepo := repository.NewPhotoRepository(store)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	rosterSvc := service.NewRosterService(studentRepo, classRepo, sessionRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, sessionRepo, validate, logr)
	noteSvc := service.NewNoteService(noteRepo, sessionRepo, validate, logr)
	metricSvc := service.NewMetricService(metricRepo, sessionRepo, validate, logr)
	requestSvc := service.NewRequestService(requestRepo, configRepo, validate, logr)
	configSvc := service.NewConfigService(configRepo, cacheSvc, validate, logr)
	riskSvc := service.NewRiskService(attendanceSvc, noteRepo, requestSvc, studentRepo, configRepo, cacheSvc, cfg.Dashboard.CacheTTL, logr)
	attendanceSvc.SetRiskInvalidator(riskSvc)
	noteSvc.SetRiskInvalidator(riskSvc)
	requestSvc.SetRiskInvalidator(riskSvc)
	reportSvc := service.NewReportService(reportRepo, attendanceRepo, noteRepo, sessionRepo, studentRepo, riskSvc, configRepo, logr)
	autosaveSvc := service.NewAutosaveService(attendanceSvc, metricSvc, cfg.Autosave.QuietPeriod, logr)

	exportStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	exportSigner := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(exportRepo, reportSvc, exportStorage, exportSigner,
		service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL},
		jobs.QueueConfig{Workers: cfg.Exports.WorkerConcurrency, MaxRetries: cfg.Exports.WorkerRetries, Logger: logr},
		logr)
	exportSvc.StartQueue(ctx)
	defer exportSvc.StopQueue()

	photoStorage, err := storage.NewLocalStorage(cfg.Photos.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init photo storage", "error", err)
	}
	photoSigner := storage.NewSignedURLSigner(cfg.Photos.SignedURLSecret, cfg.Photos.SignedURLTTL)
	photoSvc := service.NewPhotoService(photoRepo, studentRepo, sessionRepo, configRepo, photoStorage, photoSigner,
		service.PhotoConfig{APIPrefix: cfg.APIPrefix, MaxSizeBytes: cfg.Photos.MaxFileSizeBytes, AllowedMIMEs: cfg.Photos.AllowedMIMEs},
		logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r, cfg,
		handler.NewAuthHandler(authSvc),
		handler.NewUserHandler(userSvc),
		handler.NewRosterHandler(rosterSvc),
		handler.NewAttendanceHandler(attendanceSvc),
		handler.NewNoteHandler(noteSvc),
		handler.NewMetricHandler(metricSvc),
		handler.NewRequestHandler(requestSvc),
		handler.NewRiskHandler(riskSvc),
		handler.NewConfigHandler(configSvc),
		handler.NewReportHandler(reportSvc, exportSvc),
		handler.NewPhotoHandler(photoSvc),
		handler.NewAutosaveHandler(autosaveSvc),
		metricsHandler,
		authSvc)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	// Commit outstanding drafts before the process exits.
	autosaveSvc.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown incomplete", zap.Error(err))
	}
}

func buildStore(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*recordstore.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, err
		}
		backend := recordstore.NewPostgresBackend(db)
		if err := backend.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return recordstore.New(backend, cfg.Store.Namespace, logr), nil
	case config.StoreBackendFile:
		backend, err := recordstore.NewFileBackend(cfg.Store.DataDir)
		if err != nil {
			return nil, err
		}
		return recordstore.New(backend, cfg.Store.Namespace, logr), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func registerRoutes(r *gin.Engine, cfg *config.Config,
	auth *handler.AuthHandler,
	users *handler.UserHandler,
	roster *handler.RosterHandler,
	attendance *handler.AttendanceHandler,
	notes *handler.NoteHandler,
	metrics *handler.MetricHandler,
	requests *handler.RequestHandler,
	risk *handler.RiskHandler,
	settings *handler.ConfigHandler,
	reports *handler.ReportHandler,
	photos *handler.PhotoHandler,
	autosave *handler.AutosaveHandler,
	system *handler.MetricsHandler,
	authSvc *service.AuthService,
) {
	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", auth.Login)
	api.POST("/auth/refresh", auth.Refresh)

	// Download links authenticate via their signed token, not a JWT, so the
	// browser can follow them directly.
	api.GET("/exports/download/:token", reports.DownloadExport)
	api.GET("/photos/download/:token", photos.Download)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.POST("/auth/logout", auth.Logout)
	authed.PUT("/auth/password", auth.ChangePassword)

	admin := middleware.RequireRoles(models.RoleAdmin)
	staffOrAdmin := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff)

	authed.GET("/users", admin, users.List)
	authed.POST("/users", admin, users.Create)
	authed.GET("/users/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), users.Get)
	authed.PUT("/users/:id", admin, users.Update)
	authed.DELETE("/users/:id", admin, users.Deactivate)

	authed.GET("/students", roster.ListStudents)
	authed.POST("/students", staffOrAdmin, roster.SaveStudent)
	authed.GET("/students/:id", roster.GetStudent)
	authed.GET("/students/:id/attendance", attendance.StudentSummary)
	authed.GET("/students/:id/metrics", metrics.ListByStudent)
	authed.GET("/students/:id/risk", risk.AssessStudent)

	authed.GET("/classes", roster.ListClasses)
	authed.POST("/classes", staffOrAdmin, roster.SaveClass)
	authed.GET("/classes/:id", roster.GetClass)
	authed.GET("/classes/:id/sessions", roster.ListSessions)
	authed.GET("/classes/:id/risk", risk.ClassOverview)

	authed.POST("/sessions", staffOrAdmin, roster.SaveSession)
	authed.GET("/sessions/:id", roster.GetSession)
	authed.GET("/sessions/:id/attendance", attendance.ListBySession)
	authed.GET("/sessions/:id/metrics", metrics.ListBySession)
	authed.POST("/sessions/:id/report", reports.Generate)
	authed.GET("/sessions/:id/report", reports.Get)
	authed.POST("/sessions/:id/photos", photos.Upload)
	authed.GET("/sessions/:id/photos", photos.ListBySession)
	authed.POST("/sessions/:id/draft", autosave.Buffer)
	authed.GET("/sessions/:id/draft", autosave.Status)
	authed.POST("/sessions/:id/draft/flush", autosave.Flush)
	authed.DELETE("/sessions/:id/draft", autosave.Discard)

	authed.POST("/attendance", attendance.Mark)
	authed.POST("/attendance/bulk", attendance.BulkMark)

	authed.POST("/notes", notes.Create)
	authed.GET("/notes", notes.List)

	authed.POST("/metrics", metrics.Record)

	authed.POST("/requests", requests.Create)
	authed.GET("/requests", requests.List)
	authed.GET("/requests/:id", requests.Get)
	authed.POST("/requests/:id/resolve", requests.Resolve)

	authed.GET("/settings", settings.Get)
	authed.PUT("/settings", admin, settings.Replace)

	authed.POST("/exports", reports.RequestExport)
	authed.GET("/exports/:id", reports.GetExport)

	authed.GET("/system/metrics", admin, system.Snapshot)
}
