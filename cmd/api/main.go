package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/gridpulse/streetlight-dispatch/internal/api/http"
	"github.com/gridpulse/streetlight-dispatch/internal/api/http/handlers"
	"github.com/gridpulse/streetlight-dispatch/internal/auth"
	"github.com/gridpulse/streetlight-dispatch/internal/config"
	"github.com/gridpulse/streetlight-dispatch/internal/events"
	"github.com/gridpulse/streetlight-dispatch/internal/observability"
	"github.com/gridpulse/streetlight-dispatch/internal/persistence"
	"github.com/gridpulse/streetlight-dispatch/internal/repository"
	"github.com/gridpulse/streetlight-dispatch/internal/repository/memory"
	"github.com/gridpulse/streetlight-dispatch/internal/service"
	"github.com/gridpulse/streetlight-dispatch/internal/worker"
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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var (
		ticketRepo  repository.TicketRepository
		assetRepo   repository.AssetRepository
		workerRepo  repository.WorkerRepository
		historyRepo repository.HistoryRepository
		atomic      repository.Atomic
	)
	if pool := pg.PoolHandle(); pool != nil {
		ticketRepo = repository.NewTicketRepository(pool)
		assetRepo = repository.NewAssetRepository(pool)
		workerRepo = repository.NewWorkerRepository(pool)
		historyRepo = repository.NewHistoryRepository(pool)
		atomic = repository.NewAtomic(pool)
	} else {
		logger.Warn("running with in-memory stores; data will not survive restarts")
		store := memory.NewStore()
		ticketRepo = store.Tickets()
		assetRepo = store.Assets()
		workerRepo = store.Workers()
		historyRepo = store.History()
		atomic = store
	}

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	dispatchService := service.NewDispatchService(service.DispatchDependencies{
		TicketRepo:   ticketRepo,
		AssetRepo:    assetRepo,
		WorkerRepo:   workerRepo,
		HistoryRepo:  historyRepo,
		Atomic:       atomic,
		Dispatcher:   dispatcher,
		SearchRadius: cfg.Dispatch.SearchRadiusMeters,
	})
	assetService := service.NewAssetService(assetRepo, dispatchService, dispatcher, logger)
	locationService := service.NewLocationService(workerRepo, redis, cfg.Dispatch.LocationTTL(), logger)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		WorkerRepo: workerRepo,
		Tokens:     tokenManager,
		Logger:     logger,
	})
	authMiddleware := auth.NewAuthMiddleware(tokenManager, workerRepo)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)
	defer notificationService.Stop()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Workers:        handlers.NewWorkersHandler(authService, locationService),
		Assets:         handlers.NewAssetsHandler(assetService),
		Tickets:        handlers.NewTicketsHandler(dispatchService),
		Tasks:          handlers.NewTasksHandler(dispatchService, locationService),
		AuthMiddleware: authMiddleware,
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
