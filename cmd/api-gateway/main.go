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
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-portal-gateway/api/swagger"
	"github.com/noah-isme/school-portal-gateway/internal/handler"
	"github.com/noah-isme/school-portal-gateway/internal/middleware"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/internal/repository"
	"github.com/noah-isme/school-portal-gateway/internal/service"
	"github.com/noah-isme/school-portal-gateway/internal/upstream"
	"github.com/noah-isme/school-portal-gateway/pkg/cache"
	"github.com/noah-isme/school-portal-gateway/pkg/config"
	"github.com/noah-isme/school-portal-gateway/pkg/database"
	"github.com/noah-isme/school-portal-gateway/pkg/jobs"
	"github.com/noah-isme/school-portal-gateway/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-portal-gateway/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-portal-gateway/pkg/middleware/requestid"
	"github.com/noah-isme/school-portal-gateway/pkg/storage"
)

// @title School Portal Gateway
// @version 1.0.0
// @description Gateway for the school microservices: grading, units, rosters, attendance, incidents and dashboards.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		logr.Fatal("failed to migrate database", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.Grading.Store == config.GradeStoreRedis || cfg.Dashboard.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		switch {
		case err != nil && cfg.Grading.Store == config.GradeStoreRedis:
			logr.Fatal("redis grade store unavailable", zap.Error(err))
		case err != nil:
			logr.Warn("redis unavailable, dashboard cache disabled", zap.String("addr", cache.Addr(cfg.Redis)), zap.Error(err))
		default:
			defer redisClient.Close()
		}
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	httpClient := &http.Client{Timeout: cfg.Backends.Timeout}
	staffClient := upstream.NewStaffClient(upstream.NewClient("staff", cfg.Backends.StaffURL, httpClient, metricsSvc, logr))
	studentsClient := upstream.NewStudentsClient(upstream.NewClient("students", cfg.Backends.StudentsURL, httpClient, metricsSvc, logr))
	unitsClient := upstream.NewUnitsClient(upstream.NewClient("units", cfg.Backends.UnitsURL, httpClient, metricsSvc, logr))
	attendanceClient := upstream.NewAttendanceClient(upstream.NewClient("attendance", cfg.Backends.AttendanceURL, httpClient, metricsSvc, logr))
	incidentsClient := upstream.NewIncidentsClient(upstream.NewClient("incidents", cfg.Backends.IncidentsURL, httpClient, metricsSvc, logr))

	var gradeStore service.GradeStore = repository.NewGradeSnapshotRepository(db)
	if cfg.Grading.Store == config.GradeStoreRedis {
		gradeStore = repository.NewGradeRedisRepository(redisClient)
	}

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient)
	}
	dashboardCache := service.NewCacheService("dashboard", cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)

	authSvc := service.NewAuthService(staffClient, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	unitSvc := service.NewUnitService(unitsClient, repository.NewUnitRegistryRepository(db), logr)
	gradeSvc := service.NewGradeService(service.GradeServiceParams{
		Store:     gradeStore,
		Source:    service.NewGradingSourceService(unitSvc, studentsClient),
		Validator: validate,
		Logger:    logr,
	})
	rosterSvc := service.NewRosterService(service.RosterServiceParams{
		Backend:        studentsClient,
		Tutorados:      attendanceClient,
		Validator:      validate,
		Logger:         logr,
		MaxUploadBytes: cfg.Uploads.MaxFileSizeBytes,
	})
	attendanceSvc := service.NewAttendanceService(attendanceClient, logr)
	incidentSvc := service.NewIncidentService(incidentsClient, studentsClient, logr)
	staffSvc := service.NewStaffService(staffClient, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Staff:     staffClient,
		Students:  studentsClient,
		Tutorados: attendanceClient,
		Courses:   unitsClient,
		Incidents: incidentsClient,
		Cache:     dashboardCache,
		Logger:    logr,
		Config:    service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})

	var exportHandler *handler.ExportHandler
	if cfg.Exports.Enabled {
		exportHandler, err = setupExports(ctx, cfg, db, logr, metricsSvc, validate, service.ExportSources{
			Grades:     gradeSvc,
			Students:   rosterSvc,
			Attendance: attendanceSvc,
		})
		if err != nil {
			logr.Fatal("failed to start exports", zap.Error(err))
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	checks := []handler.HealthCheck{{Name: "postgres", Check: db.PingContext}}
	if redisClient != nil {
		checks = append(checks, handler.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc.Handler(), checks...)
	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), routeHandlers{
		auth:       handler.NewAuthHandler(authSvc),
		grades:     handler.NewGradeHandler(gradeSvc),
		units:      handler.NewUnitHandler(unitSvc),
		rosters:    handler.NewRosterHandler(rosterSvc),
		attendance: handler.NewAttendanceHandler(attendanceSvc, rosterSvc),
		incidents:  handler.NewIncidentHandler(incidentSvc),
		dashboards: handler.NewDashboardHandler(dashboardSvc),
		staff:      handler.NewStaffHandler(staffSvc),
		exports:    exportHandler,
	}, authSvc)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "grade_store", cfg.Grading.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func setupExports(ctx context.Context, cfg *config.Config, db *sqlx.DB, logr *zap.Logger, metricsSvc *service.MetricsService, validate *validator.Validate, sources service.ExportSources) (*handler.ExportHandler, error) {
	store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return nil, err
	}
	exporter := service.NewExportService(sources, store, storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL), nil, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr)

	jobRepo := repository.NewExportJobRepository(db)
	worker := service.NewExportWorker(jobRepo, exporter, metricsSvc, logr)
	queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
		Workers:     cfg.Exports.WorkerConcurrency,
		MaxRetries:  cfg.Exports.WorkerRetries,
		RetryDelay:  2 * time.Second,
		OnExhausted: worker.Exhausted,
		Logger:      logr,
	})
	queue.Start(ctx)

	jobSvc := service.NewExportJobService(jobRepo, queue, exporter, metricsSvc, validate, logr, service.ExportJobServiceConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
	})
	jobSvc.RecoverPendingJobs(ctx)
	jobSvc.StartCleanup(ctx)
	return handler.NewExportHandler(jobSvc), nil
}

type routeHandlers struct {
	auth       *handler.AuthHandler
	grades     *handler.GradeHandler
	units      *handler.UnitHandler
	rosters    *handler.RosterHandler
	attendance *handler.AttendanceHandler
	incidents  *handler.IncidentHandler
	dashboards *handler.DashboardHandler
	staff      *handler.StaffHandler
	exports    *handler.ExportHandler
}

func registerRoutes(api *gin.RouterGroup, h routeHandlers, tokens middleware.TokenValidator) {
	api.POST("/auth/login", h.auth.Login)
	if h.exports != nil {
		api.GET("/export/:token", h.exports.Download)
	}

	secured := api.Group("")
	secured.Use(middleware.JWT(tokens))
	secured.GET("/auth/me", h.auth.Me)

	director := middleware.RequireRoles(models.RoleDirector)
	tutor := middleware.RequireRoles(models.RoleTutor)
	teaching := middleware.RequireRoles(models.RoleTutor, models.RoleTeacher)

	dashboards := secured.Group("/dashboards")
	dashboards.GET("/director", director, h.dashboards.Director)
	dashboards.GET("/tutor", tutor, h.dashboards.Tutor)
	dashboards.GET("/docente", middleware.RequireRoles(models.RoleTeacher), h.dashboards.Teacher)
	dashboards.DELETE("/cache", director, h.dashboards.Invalidate)

	grades := secured.Group("/grades", teaching)
	grades.GET("", h.grades.All)
	grades.GET("/:subjectId", h.grades.Gradebook)
	grades.PUT("/:subjectId/scores", h.grades.SetScore)
	grades.POST("/:subjectId/scores/commit", h.grades.CommitScore)
	grades.POST("/:subjectId/save", h.grades.Save)
	grades.DELETE("/:subjectId/draft", h.grades.Discard)

	units := secured.Group("/units", teaching)
	units.POST("/validate", h.units.Validate)
	units.POST("", h.units.Register)
	units.GET("/stats", h.units.Stats)
	units.GET("/course/:courseId", h.units.ByCourse)
	units.GET("/subject/:subjectId", h.units.BySubject)
	units.DELETE("/:id", h.units.Delete)

	rosters := secured.Group("/rosters", middleware.RequireRoles(models.RoleDirector, models.RoleTutor))
	rosters.POST("/parse", h.rosters.Parse)
	rosters.POST("/validate", h.rosters.Validate)
	rosters.POST("/upload", h.rosters.Upload)
	rosters.POST("/export", h.rosters.ExportRoster)

	students := secured.Group("/students", director)
	students.GET("", h.rosters.Students)
	students.GET("/export", h.rosters.ExportStudents)
	students.GET("/template", h.rosters.Template)
	secured.GET("/enrollments", director, h.rosters.EnrollmentLists)
	secured.GET("/staff", director, h.staff.List)

	attendance := secured.Group("/attendance", tutor)
	attendance.GET("", h.attendance.Roll)
	attendance.POST("", h.attendance.Submit)
	attendance.POST("/import", h.attendance.Import)
	attendance.GET("/history", h.attendance.History)
	attendance.GET("/export", h.attendance.Export)

	incidents := secured.Group("/incidents", teaching)
	incidents.GET("", h.incidents.List)
	incidents.POST("", h.incidents.Create)

	if h.exports != nil {
		secured.POST("/exports", h.exports.Create)
		secured.GET("/exports/:id", h.exports.Status)
	}
}
