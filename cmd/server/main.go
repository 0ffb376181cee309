package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"atelier-crm/config"
	"atelier-crm/internal/crm"
	"atelier-crm/internal/database"
	"atelier-crm/internal/database/models"
	"atelier-crm/internal/gateway/handlers"
	"atelier-crm/internal/gateway/middleware"
	"atelier-crm/internal/logger"
	"atelier-crm/internal/ratelimit"
	crmservice "atelier-crm/internal/services/crm/handler"
	"atelier-crm/internal/utils"
)

func main() {
	cfg := config.LoadConfig()

	appLog, err := logger.New(cfg.Server.Mode)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		appLog.Fatal("failed to connect to database", "error", err)
	}
	if err := models.MigrateCRMDB(db); err != nil {
		appLog.Fatal("failed to migrate database", "error", err)
	}

	redisClient, err := config.NewRedisClient(cfg.Redis)
	if err != nil {
		appLog.Warn("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	var limiterStore ratelimit.Store
	if cfg.RateLimit.Backend == "redis" && redisClient != nil {
		limiterStore = ratelimit.NewRedisStore(redisClient)
	} else {
		limiterStore = ratelimit.NewMemoryStore(cfg.RateLimit.MaxIdentities)
	}
	limiter := ratelimit.New(limiterStore)

	tokens := utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	store := crmservice.NewCRMHandler(db, redisClient, appLog)
	engine := crm.NewEngine(crm.NewScheduler())

	alertsHandler := handlers.NewAlertsHTTPHandler(store, engine, appLog)
	clientHandler := handlers.NewClientHTTPHandler(store, appLog)
	watchHandler := handlers.NewWatchHTTPHandler(store, appLog)
	waitlistHandler := handlers.NewWaitlistHTTPHandler(store, engine.Scheduler(), appLog)
	reminderHandler := handlers.NewReminderHTTPHandler(store, appLog)
	authHandler := handlers.NewAuthHTTPHandler(store, tokens, appLog)

	gin.SetMode(ginMode(cfg.Server.Mode))
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.Identify(tokens))

	readLimit := middleware.RateLimit(limiter, ratelimit.CategoryRead, appLog)
	writeLimit := middleware.RateLimit(limiter, ratelimit.CategoryWrite, appLog)
	searchLimit := middleware.RateLimit(limiter, ratelimit.CategorySearch, appLog)
	importLimit := middleware.RateLimit(limiter, ratelimit.CategoryImport, appLog)
	authLimit := middleware.RateLimit(limiter, ratelimit.CategoryAuth, appLog)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authLimit, authHandler.Login)
			auth.POST("/register", authLimit, authHandler.Register)
		}

		// Everything past this point needs a valid token.
		protected := api.Group("", middleware.RequireAuth(tokens))

		protected.GET("/alerts", readLimit, alertsHandler.GetAllocationAlerts)
		protected.GET("/config/cadence", readLimit, alertsHandler.GetCadenceConfig)
		protected.GET("/watches", readLimit, watchHandler.ListWatches)

		clients := protected.Group("/clients")
		{
			clients.GET("", readLimit, clientHandler.ListClients)
			clients.GET("/search", searchLimit, clientHandler.SearchClients)
			clients.GET("/:id", readLimit, clientHandler.GetClient)
			clients.POST("", writeLimit, clientHandler.CreateClient)
			clients.POST("/import", importLimit, clientHandler.ImportClients)
			clients.POST("/:id/contact", writeLimit, clientHandler.RecordContact)
			clients.PUT("/:id", writeLimit, clientHandler.UpdateClient)
			clients.DELETE("/:id", writeLimit, clientHandler.DeleteClient)
		}

		waitlist := protected.Group("/waitlist")
		{
			waitlist.GET("", readLimit, waitlistHandler.ListEntries)
			waitlist.POST("", writeLimit, waitlistHandler.AddEntry)
			waitlist.DELETE("/:id", writeLimit, waitlistHandler.RemoveEntry)
		}

		reminders := protected.Group("/reminders")
		{
			reminders.GET("", readLimit, reminderHandler.ListReminders)
			reminders.POST("", writeLimit, reminderHandler.CreateReminder)
			reminders.PUT("/:id", writeLimit, reminderHandler.UpdateReminder)
			reminders.POST("/:id/complete", writeLimit, reminderHandler.CompleteReminder)
			reminders.POST("/:id/snooze", writeLimit, reminderHandler.SnoozeReminder)
			reminders.DELETE("/:id", writeLimit, reminderHandler.DeleteReminder)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	appLog.Info("server starting", "port", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		appLog.Fatal("server exited", "error", err)
	}
}

func ginMode(mode string) string {
	switch mode {
	case "release", "prod", "production":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
