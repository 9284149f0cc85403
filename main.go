package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/juju/clock"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"salonbook/config"
	"salonbook/cron"
	"salonbook/database"
	"salonbook/database/repository"
	"salonbook/handlers"
	"salonbook/middleware"
	"salonbook/models"
	"salonbook/routes"
	"salonbook/services/booking"
	"salonbook/services/directory"
	"salonbook/services/notification"
	"salonbook/services/recommendation"
	"salonbook/services/reconcile"
	"salonbook/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()
	cfg := config.AppConfig

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := clock.WallClock
	grid := models.NewSlotGrid(cfg.SlotStartHour, cfg.SlotEndHour, cfg.WorkingDays)
	inMemory := cfg.StoreBackend == "memory"

	// Stores, name cache and sync inbox.
	var (
		stores      *repository.Stores
		names       directory.NameStore
		inbox       notification.SyncInbox
		redisProbes []redis.UniversalClient
		mongoClient *mongo.Client
	)
	if inMemory {
		logger.Warn("main: running with in-memory stores; state is lost on restart")
		stores = repository.NewMemoryStores(clk)
		names = directory.NewMemoryNameStore()
		inbox = notification.NewMemorySyncInbox()
	} else {
		utils.InitRedis()
		db, err := database.InitDB(ctx, logger)
		if err != nil {
			logger.Fatal("main: database unavailable", zap.Error(err))
		}
		mongoClient = database.MongoClient
		stores, err = repository.NewMongoStores(ctx, db, cfg.LedgerBackend, utils.GetLedgerClient(), clk)
		if err != nil {
			logger.Fatal("main: failed to initialize stores", zap.Error(err))
		}
		names = directory.NewRedisNameStore(utils.GetCacheClient())
		inbox = notification.NewRedisSyncInbox(utils.GetCacheClient())
		redisProbes = []redis.UniversalClient{utils.GetLedgerClient(), utils.GetCacheClient()}
	}
	utils.StartHealthMonitor(ctx, time.Minute, redisProbes, mongoClient)

	// Services.
	dir := directory.New(cfg.Masters, names, logger)
	dispatcher := notification.NewDispatcher(inbox, dir, logger)

	var (
		notifier    booking.Notifier = notification.InlineNotifier{Sink: dispatcher}
		queueClient *asynq.Client
	)
	if !inMemory {
		queueClient = asynq.NewClient(utils.QueueRedisOpt())
		asynqNotifier, err := notification.NewAsynqNotifier(queueClient, logger)
		if err != nil {
			logger.Fatal("main: failed to initialize notifier", zap.Error(err))
		}
		notifier = asynqNotifier
	}

	availability, err := booking.NewDefaultAvailabilityService(stores.Ledger, dir, grid, clk)
	if err != nil {
		logger.Fatal("main: failed to initialize availability service", zap.Error(err))
	}
	bookingService, err := booking.NewDefaultBookingService(booking.BookingDeps{
		Ledger:       stores.Ledger,
		Bookings:     stores.Bookings,
		History:      stores.History,
		Availability: availability,
		Directory:    dir,
		Notifier:     notifier,
		Grid:         grid,
		Retry: booking.HistoryRetryPolicy{
			Attempts: cfg.HistoryRetries,
			Delay:    cfg.HistoryRetryDelay,
		},
		Clock:  clk,
		Logger: logger.Named("booking"),
	})
	if err != nil {
		logger.Fatal("main: failed to initialize booking service", zap.Error(err))
	}
	engine, err := recommendation.NewDefaultEngine(stores.History, stores.Ledger, dir, grid, recommendation.Policy{
		RevisitIntervalDays: cfg.RevisitIntervalDays,
		MaxAttempts:         cfg.RecommendationMaxAttempts,
		PreserveWeekday:     cfg.RecommendationPreserveWeekday,
	}, clk, logger.Named("recommendation"))
	if err != nil {
		logger.Fatal("main: failed to initialize recommendation engine", zap.Error(err))
	}
	reconciler := reconcile.NewReconciler(stores.Ledger, stores.Bookings, cfg.ReservationTimeout, clk, logger.Named("reconcile"))

	// Background work: asynq worker with Redis, a local ticker otherwise.
	var worker *cron.Worker
	if inMemory {
		go cron.RunLocal(ctx, reconciler, cfg.ReconcileInterval, logger.Named("reconcile"))
	} else {
		worker = cron.NewWorker(utils.QueueRedisOpt(), reconciler, dispatcher, cfg.ReconcileInterval, logger.Named("worker"))
		if err := worker.Start(); err != nil {
			logger.Fatal("main: failed to start background worker", zap.Error(err))
		}
	}

	// HTTP.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger.Named("http")))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	handlerBundle := handlers.NewHandlerBundle(
		dir,
		handlers.NewBookingHandler(bookingService),
		handlers.NewMasterHandler(dir, availability),
		handlers.NewHistoryHandler(stores.History),
		handlers.NewRecommendationHandler(engine),
		handlers.NewSyncHandler(dispatcher),
		handlers.NewAdminHandler(reconciler),
	)
	routes.RegisterRoutes(router, handlerBundle)

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("main: starting server", zap.String("addr", srv.Addr), zap.String("store_backend", cfg.StoreBackend))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("main: server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	if worker != nil {
		worker.Shutdown()
	}
	if queueClient != nil {
		if err := queueClient.Close(); err != nil {
			logger.Warn("main: failed to close queue client", zap.Error(err))
		}
	}
	if err := database.CloseDB(shutdownCtx); err != nil {
		logger.Warn("main: failed to disconnect MongoDB", zap.Error(err))
	}
	logger.Info("main: server stopped gracefully")
}
