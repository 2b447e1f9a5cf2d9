package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	_ "github.com/noah-isme/shift-booking-api/api/swagger"
	"github.com/noah-isme/shift-booking-api/internal/calendar"
	"github.com/noah-isme/shift-booking-api/internal/handler"
	"github.com/noah-isme/shift-booking-api/internal/models"
	"github.com/noah-isme/shift-booking-api/internal/notify"
	"github.com/noah-isme/shift-booking-api/internal/repository"
	"github.com/noah-isme/shift-booking-api/internal/router"
	"github.com/noah-isme/shift-booking-api/internal/scheduler"
	"github.com/noah-isme/shift-booking-api/internal/service"
	"github.com/noah-isme/shift-booking-api/pkg/cache"
	"github.com/noah-isme/shift-booking-api/pkg/config"
	"github.com/noah-isme/shift-booking-api/pkg/database"
	"github.com/noah-isme/shift-booking-api/pkg/export"
	"github.com/noah-isme/shift-booking-api/pkg/jobs"
	"github.com/noah-isme/shift-booking-api/pkg/logger"
	"github.com/noah-isme/shift-booking-api/pkg/telemetry"
)

// @title Shift Booking API
// @version 1.0.0
// @description Volunteer shift booking: slot catalog, bookings, favorites, admin tooling and unfilled-slot warnings.
// @BasePath /api/v1
// @schemes http https
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logr.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db.DB, logr); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	rules, err := calendar.NewRules(cfg.Calendar)
	if err != nil {
		return fmt.Errorf("calendar rules: %w", err)
	}
	catalog, err := calendar.NewCatalog(cfg.Slots.Catalog)
	if err != nil {
		return fmt.Errorf("slot catalog: %w", err)
	}

	bookingRepo := repository.NewBookingRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	userRepo := repository.NewUserRepository(db)

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, "shift-booking", logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	clock := func(slot models.SlotTemplate, date time.Time) (time.Time, time.Time) {
		return catalog.Start(slot, date, rules.Location()), catalog.End(slot, date, rules.Location())
	}
	directory := notify.NewUserDirectory(cfg.Notify.AdminRecipients, userRepo)
	dispatcher, closeDispatcher, err := notify.New(cfg.Notify, directory, clock, logr)
	if err != nil {
		return fmt.Errorf("notification transport: %w", err)
	}
	defer func() {
		if err := closeDispatcher(); err != nil {
			logr.Warn("close notification transport", zap.Error(err))
		}
	}()

	now := time.Now
	auditSvc := service.NewAuditService(auditRepo, logr)
	ledgerSvc := service.NewLedgerService(bookingRepo, auditSvc, cacheSvc, metricsSvc, logr)
	gate := service.NewEligibilityService(rules, catalog, now)
	favoriteSvc := service.NewFavoriteService(favoriteRepo, catalog, auditSvc, logr)
	notificationSvc := service.NewNotificationService(dispatcher, cfg.Notify.Timeout, metricsSvc, logr)
	workflowSvc := service.NewWorkflowService(gate, ledgerSvc, catalog, favoriteSvc, notificationSvc, userRepo, metricsSvc, logr)
	availabilitySvc := service.NewAvailabilityService(rules, catalog, ledgerSvc, cacheSvc, cfg.Cache.TTL, logr)
	rosterSvc := service.NewRosterService(ledgerSvc, catalog, export.NewPDFExporter())
	sweepSvc := service.NewSweepService(rules, catalog, notificationRepo, notificationSvc, auditSvc, metricsSvc, logr, now)

	queue := jobs.NewQueue("sweep", sweepSvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Sweep.Workers,
		MaxRetries: cfg.Sweep.MaxRetries,
		RetryDelay: cfg.Sweep.RetryDelay,
		OnGiveUp:   sweepSvc.GiveUp,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()
	sweepSvc.UseQueue(queue)

	if cfg.Sweep.Enabled {
		daily, err := scheduler.NewDaily("unfilled-sweep", cfg.Sweep.RunAt, rules.Location(), func(ctx context.Context) error {
			_, err := sweepSvc.RunSweep(ctx, cfg.Sweep.HorizonDays)
			return err
		}, logr)
		if err != nil {
			return fmt.Errorf("sweep schedule: %w", err)
		}
		daily.Start(ctx)
	}

	validate := validator.New()
	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return pingRedis(ctx, redisClient)
		})
	}

	engine := router.New(router.Options{
		Env:       cfg.Env,
		APIPrefix: cfg.APIPrefix,
		CORS:      cfg.CORS,
		Logger:    logr,
		Metrics:   metricsSvc,
		Tokens:    service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer),
	}, router.Handlers{
		Slots:     handler.NewSlotHandler(catalog, availabilitySvc, func() time.Time { return rules.Today(now()) }),
		Bookings:  handler.NewBookingHandler(workflowSvc, ledgerSvc, validate),
		Favorites: handler.NewFavoriteHandler(favoriteSvc, validate),
		Admin:     handler.NewAdminHandler(workflowSvc, ledgerSvc, sweepSvc, rosterSvc, auditSvc, cfg.Sweep.HorizonDays, validate),
		Metrics:   handler.NewMetricsHandler(metricsSvc, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           otelhttp.NewHandler(engine, cfg.Telemetry.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func pingRedis(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}
