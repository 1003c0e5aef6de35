package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/campus-kit/complaint-service/internal/api/http"
	"github.com/campus-kit/complaint-service/internal/api/http/handlers"
	"github.com/campus-kit/complaint-service/internal/auth"
	"github.com/campus-kit/complaint-service/internal/config"
	"github.com/campus-kit/complaint-service/internal/events"
	"github.com/campus-kit/complaint-service/internal/observability"
	"github.com/campus-kit/complaint-service/internal/persistence"
	"github.com/campus-kit/complaint-service/internal/repository"
	"github.com/campus-kit/complaint-service/internal/service"
	"github.com/campus-kit/complaint-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer rdb.Close()

	objectStore, err := persistence.NewObjectStore(cfg.ObjectStore, logger)
	if err != nil {
		logger.Fatal("failed to connect object store", zap.Error(err))
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		logger.Fatal("failed to ensure bucket", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	roleRepo := repository.NewRoleAssignmentRepository(pool)
	campusRepo := repository.NewCampusRepository(pool)
	complaintTypeRepo := repository.NewComplaintTypeRepository(pool)
	complaintRepo := repository.NewComplaintRepository(pool)
	updateRepo := repository.NewComplaintUpdateRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	verificationStore := repository.NewVerificationStore(rdb.Client,
		time.Duration(cfg.Auth.VerificationTTLHours)*time.Hour)
	trackCache := repository.NewTrackingCache(rdb.Client, 30*time.Second)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		RoleRepo:          roleRepo,
		PasswordResetRepo: resetRepo,
		VerificationStore: verificationStore,
		Dispatcher:        dispatcher,
	})
	userAdminService := service.NewUserAdminService(service.UserAdminDependencies{
		UserRepo:          userRepo,
		RoleRepo:          roleRepo,
		CampusRepo:        campusRepo,
		ComplaintTypeRepo: complaintTypeRepo,
	}, cfg.Auth.BcryptCost)
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo:     complaintRepo,
		UpdateRepo:        updateRepo,
		RoleRepo:          roleRepo,
		UserRepo:          userRepo,
		CampusRepo:        campusRepo,
		ComplaintTypeRepo: complaintTypeRepo,
		Images:            objectStore,
		TrackCache:        trackCache,
		Dispatcher:        dispatcher,
	})
	dashboardService := service.NewDashboardService(complaintRepo, roleRepo, campusRepo, complaintTypeRepo)
	referenceService := service.NewReferenceService(campusRepo, complaintTypeRepo)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, logger)

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo, roleRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rdb, objectStore),
		Auth:           handlers.NewAuthHandler(authService),
		AdminUsers:     handlers.NewAdminUsersHandler(userAdminService),
		Reference:      handlers.NewReferenceHandler(referenceService),
		Complaints:     handlers.NewComplaintsHandler(complaintService),
		Coordinator:    handlers.NewCoordinatorHandler(complaintService),
		Worker:         handlers.NewWorkerHandler(complaintService),
		Dashboards:     handlers.NewDashboardsHandler(dashboardService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
