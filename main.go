// File: eventura/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventura/config"
	"eventura/database"
	"eventura/database/repository"
	"eventura/handlers"
	"eventura/middleware"
	"eventura/routes"
	ai "eventura/services/intelligence"
	"eventura/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// Conversation memory.
	var (
		store       ai.ConversationStore
		redisClient *redis.Client
	)
	switch config.AppConfig.ConversationStore {
	case "memory":
		store = ai.NewMemoryConversationStore(config.AppConfig.ConversationMaxTurns)
	default:
		redisClient = utils.GetConversationCacheClient()
		store = ai.NewRedisConversationStore(redisClient, config.AppConfig.ConversationTTL, config.AppConfig.ConversationMaxTurns)
	}
	logger.Info("Conversation store ready", zap.String("kind", config.AppConfig.ConversationStore))

	// LLM clients.
	chatLLM, err := ai.NewGeminiClient(rootCtx, config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiChatModel,
		ai.WithSystemInstruction(ai.ChatSystemInstruction),
		ai.WithBookingTool(),
		ai.WithLogger(logger),
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize chat model: %v", err)
	}
	searchLLM, err := ai.NewGeminiClient(rootCtx, config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiSearchModel,
		ai.WithJSONResponse(),
		ai.WithTemperature(0.4),
		ai.WithLogger(logger),
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize search model: %v", err)
	}

	// repositories.
	mongoVendorRepo := repository.NewMongoVendorRepo(database.Database())
	indexCtx, cancelIndex := context.WithTimeout(rootCtx, 10*time.Second)
	if err := mongoVendorRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Warn("main: failed to ensure vendor indexes", zap.Error(err))
	}
	cancelIndex()

	var vendorRepo repository.VendorRepository = mongoVendorRepo
	if redisClient != nil && config.AppConfig.VendorCacheTTL > 0 {
		vendorRepo = repository.NewCachedVendorRepo(mongoVendorRepo, redisClient, config.AppConfig.VendorCacheTTL, logger.Named("vendor-cache"))
	}

	// services.
	dates := ai.NewDateNormalizer(nil)
	intentPipeline := ai.NewIntentPipeline(chatLLM, store, dates, logger.Named("intent"))
	searchService := ai.NewVendorSearchService(searchLLM, vendorRepo, dates, config.AppConfig.VendorLimit, logger.Named("search"))

	utils.StartHealthMonitor(rootCtx, redisClient, database.MongoClient)

	aiHandler := handlers.NewAIHandler(intentPipeline, searchService)
	vendorHandler := handlers.NewVendorHandler(vendorRepo, config.AppConfig.VendorLimit)
	handlerBundle := handlers.NewHandlerBundle(aiHandler, vendorHandler)

	// Create the Gin router.
	router := gin.New()
	if err := middleware.ConfigureTrustedProxies(router, config.AppConfig.TrustedProxies); err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))

	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}

	if err := chatLLM.Close(); err != nil {
		logger.Warn("main: failed to close chat model", zap.Error(err))
	}
	if err := searchLLM.Close(); err != nil {
		logger.Warn("main: failed to close search model", zap.Error(err))
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := database.Disconnect(ctx); err != nil {
		logger.Warn("main: failed to disconnect MongoDB", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
