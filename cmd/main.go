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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"study-service/internal/analytics"
	"study-service/internal/cache"
	"study-service/internal/config"
	"study-service/internal/database/minio"
	"study-service/internal/database/mongo"
	"study-service/internal/database/redis"
	"study-service/internal/dataset"
	"study-service/internal/discovery"
	"study-service/internal/event"
	"study-service/internal/handlers"
	"study-service/internal/logger"
	"study-service/internal/repository"
	"study-service/internal/scoring"
	"study-service/internal/selection"
	"study-service/internal/service"
)

func main() {
	cfg := config.Load()

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	mongoClient, database, err := mongo.Connect(&cfg.MongoDB, appLog)
	if err != nil {
		appLog.Fatal("Failed to connect to MongoDB", "error", err)
	}
	defer mongo.Close(mongoClient, appLog)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := mongo.EnsureIndexes(ctx, database); err != nil {
		appLog.Fatal("Failed to create indexes", "error", err)
	}

	var catalogCache cache.Cache
	redisClient, err := redis.Connect(&cfg.Redis, appLog)
	if err != nil {
		appLog.Warn("Redis unavailable, falling back to in-memory cache", "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		catalogCache = cache.NewRedisCache(redisClient, cfg.Server.ServiceName, cfg.Cache.TTL)
	} else {
		catalogCache = cache.NewMemoryCache(cfg.Cache.TTL)
	}

	storage, err := minio.Connect(ctx, &cfg.MinIO, appLog)
	cancel()
	if err != nil {
		appLog.Fatal("Failed to initialize object storage", "error", err)
	}

	publisher, err := event.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange, appLog)
	if err != nil {
		appLog.Fatal("Failed to connect to RabbitMQ", "error", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			appLog.Error("Error closing event publisher", "error", err)
		}
	}()

	// Repositories
	sessionRepo := repository.NewSessionRepository(database)
	questionRepo := repository.NewQuestionRepository(database)
	providerRepo := repository.NewProviderRepository(database)
	examRepo := repository.NewExamRepository(database)
	topicRepo := repository.NewTopicRepository(database)
	goalRepo := repository.NewGoalRepository(database)
	snapshotRepo := repository.NewSnapshotRepository(database)
	lookup := repository.NewCatalogLookup(questionRepo, topicRepo, providerRepo, examRepo, catalogCache, appLog)

	scoringConfig := scoring.DefaultConfig()
	scoringConfig.BasePoints = cfg.Scoring.BasePoints
	scoringConfig.PassingRatio = cfg.Scoring.PassingRatio
	scorer := scoring.NewScorer(scoringConfig)

	var (
		reports  service.ReportStore
		importer service.ExamImporter
	)
	if storage != nil {
		reports = storage
		importer = dataset.NewImporter(storage, cfg.MinIO.QuestionBucket, questionRepo, topicRepo, appLog)
	}

	// Services
	sessionService := service.NewSessionService(service.SessionServiceConfig{
		Sessions:       sessionRepo,
		Pool:           selection.NewPoolManager(questionRepo, nil),
		Lookup:         lookup,
		Snapshots:      snapshotRepo,
		Reports:        reports,
		ReportBucket:   cfg.MinIO.ReportBucket,
		PresignExpiry:  cfg.MinIO.PresignExpiry,
		Publisher:      publisher,
		Scorer:         scorer,
		TargetAccuracy: cfg.Analytics.TargetAccuracy,
		Logger:         appLog,
	})
	analyticsService := service.NewAnalyticsService(sessionRepo, snapshotRepo, lookup, analytics.Settings{
		TargetAccuracy:   cfg.Analytics.TargetAccuracy,
		ComparisonWindow: cfg.Analytics.ComparisonWindow,
	}, appLog)
	goalService := service.NewGoalService(goalRepo, analyticsService, appLog)
	catalogService := service.NewCatalogService(providerRepo, examRepo, topicRepo, lookup)
	questionService := service.NewQuestionService(questionRepo, lookup)
	datasetService := service.NewDatasetService(importer, publisher, appLog)

	if cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handlers.RequestLogger(appLog))
	r.Use(handlers.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handlers.RegisterRoutes(r, &handlers.Handlers{
		Sessions:  handlers.NewSessionHandler(sessionService, appLog),
		Analytics: handlers.NewAnalyticsHandler(analyticsService, appLog),
		Goals:     handlers.NewGoalHandler(goalService, appLog),
		Catalog:   handlers.NewCatalogHandler(catalogService, appLog),
		Questions: handlers.NewQuestionHandler(questionService, appLog),
		Datasets:  handlers.NewDatasetHandler(datasetService, appLog),
	}, cfg.Server.ServiceName)

	registry, err := discovery.NewServiceRegistry(cfg, appLog)
	if err != nil {
		appLog.Warn("Failed to create service registry", "error", err)
	}
	if registry != nil {
		if err := registry.Register(); err != nil {
			appLog.Warn("Failed to register with Consul", "error", err)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLog.Info("Starting server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Error starting server", "error", err)
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan
	appLog.Info("Shutting down server...")

	if registry != nil {
		if err := registry.Deregister(); err != nil {
			appLog.Error("Error deregistering from Consul", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Error shutting down HTTP server", "error", err)
	}
}
