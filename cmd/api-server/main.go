package main

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/tralvick/backloghub/internal/artifact"
	"github.com/tralvick/backloghub/internal/auth"
	"github.com/tralvick/backloghub/internal/backlog"
	"github.com/tralvick/backloghub/internal/health"
	"github.com/tralvick/backloghub/internal/notify"
	"github.com/tralvick/backloghub/pkg/database"
	"github.com/tralvick/backloghub/pkg/logger"
	"github.com/tralvick/backloghub/pkg/metrics"
)

func main() {
	// Load environment variables from .env if present (optional)
	_ = godotenv.Load()

	logLevel := logger.INFO
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		logLevel = logger.LogLevel(level)
	}
	jsonFormat := os.Getenv("LOG_FORMAT") == "json"
	logger.Init(logLevel, jsonFormat, os.Stdout)

	log := logger.GetLogger().WithContext("component", "api_server")
	log.Info("starting_api_server", "version", "1.0.0")

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/backloghub.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Error("failed_to_initialize_database", "error", err.Error(), "path", dbPath)
		os.Exit(1)
	}
	defer db.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "your-secret-key-change-this-in-production"
		log.Warn("using_default_jwt_secret", "message", "Set JWT_SECRET environment variable in production!")
	}

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
		log.Info("using_default_frontend_url", "url", frontendURL)
	}

	// Event hub pushes change notifications to websocket clients.
	hub := notify.NewHub(logger.GetLogger().WithContext("component", "notify_hub"))
	hub.Start()
	defer hub.Stop()

	artifactRepo := artifact.NewRepository(db)
	artifactHandler := artifact.NewHandler(artifactRepo, hub)

	backlogRepo := backlog.NewRepository(db)
	backlogResolver := backlog.NewResolver(backlogRepo)
	backlogHandler := backlog.NewHandler(backlogRepo, backlogResolver, hub)

	authHandler := auth.NewHandler(db, jwtSecret)
	healthHandler := health.NewHandler(db, hub)

	router := gin.Default()

	// CORS middleware configuration
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{frontendURL}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	config.ExposeHeaders = []string{"Content-Length"}
	config.AllowCredentials = true
	router.Use(cors.New(config))

	// Websocket push endpoint; the notify server wires itself up as the
	// hub's broadcaster.
	wsServer := notify.NewServer(jwtSecret, hub)
	router.GET("/ws", wsServer.HandleWebSocket)

	router.GET("/health", healthHandler.Healthz)
	router.GET("/healthz", healthHandler.Healthz)
	router.GET("/readyz", healthHandler.Readyz)
	router.GET("/metrics", metrics.NewHandler().Metrics)

	// Auth routes (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}
	// Protected account routes
	protectedAuth := router.Group("/auth")
	protectedAuth.Use(auth.AuthMiddleware(jwtSecret))
	{
		protectedAuth.POST("/logout", authHandler.Logout)
		protectedAuth.POST("/change-password", authHandler.ChangePassword)
	}

	// Artifact routes (public search, protected mutation)
	artifactGroup := router.Group("/artifacts")
	{
		artifactGroup.GET("", artifactHandler.SearchArtifacts)

		protected := artifactGroup.Group("")
		protected.Use(auth.AuthMiddleware(jwtSecret))
		{
			protected.GET("/:id", artifactHandler.GetArtifactByID)
			protected.POST("", artifactHandler.CreateArtifact)
			protected.DELETE("/:id", artifactHandler.DeleteArtifact)
		}
	}

	// Backlog routes (all protected)
	backlogGroup := router.Group("/backlogs")
	backlogGroup.Use(auth.AuthMiddleware(jwtSecret))
	{
		backlogGroup.GET("", backlogHandler.ListBacklogs)
		backlogGroup.POST("", backlogHandler.CreateBacklog)
		backlogGroup.DELETE("/:id", backlogHandler.DeleteBacklog)
		backlogGroup.GET("/:id/entries", backlogHandler.GetEntries)
		backlogGroup.POST("/:id/entries", backlogHandler.AddEntry)
		backlogGroup.DELETE("/:id/entries/:artifact_id", backlogHandler.RemoveEntry)
		backlogGroup.PUT("/:id/entries/rank", backlogHandler.SetRank)
		backlogGroup.POST("/:id/duel", backlogHandler.Duel)
	}

	// User routes (all protected)
	userGroup := router.Group("/users")
	userGroup.Use(auth.AuthMiddleware(jwtSecret))
	{
		userGroup.PUT("/state", artifactHandler.UpdateUserState)
		userGroup.GET("/state/:artifact_id", artifactHandler.GetUserState)
		userGroup.GET("/wishlist", backlogHandler.GetWishlist)
		userGroup.POST("/wishlist/duel", backlogHandler.WishlistDuel)
		userGroup.PUT("/wishlist/rank", backlogHandler.SetWishlistRank)
		userGroup.GET("/upcoming", backlogHandler.GetUpcoming)
	}

	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}

	log.Info("starting_api_server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("failed_to_start_api_server", "error", err.Error())
		os.Exit(1)
	}
}
