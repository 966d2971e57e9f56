package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salonbot/config"
	"salonbot/cron"
	"salonbot/database"
	availabilityRepo "salonbot/database/repository/availability"
	historyRepo "salonbot/database/repository/history"
	"salonbot/handlers"
	"salonbot/routes"
	"salonbot/services/conversation"
	"salonbot/services/popular"
	"salonbot/services/session"
	"salonbot/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionStore()
	utils.InitCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	history := historyRepo.NewMongoHistoryRepo()
	slotRepo := availabilityRepo.NewMongoSlotRepo()

	// services.
	sessionStore := session.NewRedisContextStore(utils.GetSessionClient(), logger,
		time.Duration(config.AppConfig.SessionTTL)*time.Second,
		time.Duration(config.AppConfig.SessionHardCap)*time.Second)
	popularService := &popular.DefaultPopularTimesService{
		Repo:         history,
		Cache:        utils.GetCacheClient(),
		CacheTTL:     time.Duration(config.AppConfig.PopularityCacheTTL) * time.Second,
		LookbackDays: config.AppConfig.PopularityLookbackDays,
		Logger:       logger,
	}
	conversationService := &conversation.DefaultConversationService{
		Sessions:        sessionStore,
		History:         history,
		Availability:    slotRepo,
		Popular:         popularService,
		Sender:          &conversation.LogSender{Logger: logger},
		BusinessType:    config.AppConfig.DefaultBusinessType,
		DefaultLanguage: config.AppConfig.DefaultLanguage,
		Logger:          logger,
	}

	webhookHandler := handlers.NewWebhookHandler(conversationService, logger)
	popularHandler := handlers.NewPopularTimesHandler(
		popularService, sessionStore, config.AppConfig.DefaultBusinessType, logger)

	handlerBundle := &handlers.HandlerBundle{
		WebhookMessage:  webhookHandler.HandleMessage,
		PopularTimes:    popularHandler.GetPopularTimes,
		SessionCount:    popularHandler.GetSessionCount,
		InvalidateCache: popularHandler.InvalidateCache,
	}

	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetSessionClient(), utils.GetCacheClient()},
		database.MongoClient,
	)

	cron.InitWarmCacheWorker(popularService)
	go runSessionCleanup(sessionStore, logger)

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

// runSessionCleanup periodically re-arms or removes session keys that lost
// their TTL (for example after a Redis restore).
func runSessionCleanup(store session.ContextStore, logger *zap.Logger) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		n, err := store.Cleanup(context.Background())
		if err != nil {
			logger.Warn("session cleanup failed", zap.Error(err))
			continue
		}
		if n > 0 {
			logger.Info("session cleanup repaired keys", zap.Int("count", n))
		}
	}
}
