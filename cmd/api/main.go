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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/zeenat-khan28/sports-dbms/api/swagger"
	"github.com/zeenat-khan28/sports-dbms/internal/handler"
	"github.com/zeenat-khan28/sports-dbms/internal/ledger"
	"github.com/zeenat-khan28/sports-dbms/internal/middleware"
	"github.com/zeenat-khan28/sports-dbms/internal/repository"
	"github.com/zeenat-khan28/sports-dbms/internal/router"
	"github.com/zeenat-khan28/sports-dbms/internal/service"
	"github.com/zeenat-khan28/sports-dbms/pkg/cache"
	"github.com/zeenat-khan28/sports-dbms/pkg/config"
	"github.com/zeenat-khan28/sports-dbms/pkg/database"
	"github.com/zeenat-khan28/sports-dbms/pkg/export"
	"github.com/zeenat-khan28/sports-dbms/pkg/logger"
	"github.com/zeenat-khan28/sports-dbms/pkg/mailer"
	corsmiddleware "github.com/zeenat-khan28/sports-dbms/pkg/middleware/cors"
	reqidmiddleware "github.com/zeenat-khan28/sports-dbms/pkg/middleware/requestid"
)

// @title Sports DBMS API
// @version 1.0.0
// @description Sports department registration, participation and attendance service
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer pg.Close()

	mongoDB, err := database.NewMongo(cfg.Mongo)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to mongo", "error", err)
	}
	defer mongoDB.Client().Disconnect(context.Background()) //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	submissionRepo := repository.NewSubmissionRepository(mongoDB)
	participationRepo := repository.NewParticipationRepository(mongoDB)
	auditRepo := repository.NewAuditRepository(mongoDB)
	counterRepo := repository.NewCounterRepository(mongoDB)
	userRepo := repository.NewUserRepository(pg)
	eventRepo := repository.NewEventRepository(pg)
	mirrorRepo := repository.NewMirrorRepository(pg)
	attendanceRepo := repository.NewAttendanceRepository(pg)
	emailRepo := repository.NewEmailRepository(pg)
	cacheRepo := repository.NewCacheRepository(redisClient)

	if err := submissionRepo.EnsureIndexes(ctx); err != nil {
		logr.Sugar().Fatalw("failed to ensure submission indexes", "error", err)
	}
	if err := participationRepo.EnsureIndexes(ctx); err != nil {
		logr.Sugar().Fatalw("failed to ensure participation indexes", "error", err)
	}

	chain, err := ledger.NewChain(ctx, auditRepo, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to resume audit chain", "error", err)
	}

	metricsSvc := service.NewMetricsService()

	smtp := mailer.New(cfg.SMTP)

	notifySvc := service.NewNotificationService(smtp, cfg.Notify, logr).
		WithMetrics(metricsSvc)
	notifySvc.Start(ctx)
	defer notifySvc.Stop()

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		Secret:             cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	submissionSvc := service.NewSubmissionService(submissionRepo, counterRepo, mirrorRepo, chain, nil, logr).
		WithMetrics(metricsSvc)
	participationSvc := service.NewParticipationService(participationRepo, eventRepo, submissionRepo, mirrorRepo, chain, notifySvc, nil, logr).
		WithMetrics(metricsSvc)
	eventSvc := service.NewEventService(eventRepo, participationRepo, submissionRepo, notifySvc, nil, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, eventRepo, participationRepo, nil, logr)
	analyticsSvc := service.NewAnalyticsService(submissionRepo, eventRepo, mirrorRepo, attendanceRepo, cacheRepo, service.AnalyticsConfig{
		CacheEnabled: cfg.Analytics.Enabled,
		CacheTTL:     cfg.Analytics.CacheTTL,
	}, logr)
	exportSvc := service.NewExportService(submissionRepo, eventRepo, participationRepo, attendanceRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	emailSvc := service.NewEmailService(submissionRepo, emailRepo, smtp, nil, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	router.Setup(r, cfg.APIPrefix, router.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Submissions:   handler.NewSubmissionHandler(submissionSvc),
		Participation: handler.NewParticipationHandler(participationSvc),
		Events:        handler.NewEventHandler(eventSvc),
		Attendance:    handler.NewAttendanceHandler(attendanceSvc),
		Analytics:     handler.NewAnalyticsHandler(analyticsSvc),
		Exports:       handler.NewExportHandler(exportSvc),
		Email:         handler.NewEmailHandler(emailSvc),
		Metrics:       handler.NewMetricsHandler(metricsSvc),
	}, authSvc)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
