package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"spark/internal/auth"
	"spark/internal/config"
	"spark/internal/database"
	"spark/internal/handlers"
	"spark/internal/jobs"
	"spark/internal/repository"
	"spark/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// Initialize repository
	repo := repository.NewRepository(db)

	// Initialize services
	notificationService := services.NewNotificationService(db)
	authService := services.NewAuthService(db)
	userService := services.NewUserService(db)
	topicService := services.NewTopicService(db, cfg.Spark, notificationService)
	voteService := services.NewVoteService(repo, notificationService)
	researchService := services.NewResearchService(db)
	adminService := services.NewAdminService(db)
	bulkService := services.NewBulkService(topicService, userService, adminService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	topicHandler := handlers.NewTopicHandler(topicService, voteService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	researchHandler := handlers.NewResearchHandler(researchService)
	adminHandler := handlers.NewAdminHandler(adminService, topicService, userService, bulkService)

	// Start daily stats snapshot job
	statsJob := jobs.NewStatsJob(db)
	statsJob.Start(24 * time.Hour)
	log.Println("Stats snapshot job started")

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173", // Vite dev server
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	// Add additional frontend URL from environment if provided
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	// Authenticated /auth/me route
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.GetMe)
	}

	// Public browse routes
	router.GET("/api/topics", topicHandler.GetTopics)
	router.GET("/api/topics/:id", topicHandler.GetTopicByID)
	router.GET("/api/research", researchHandler.GetPublished)
	router.GET("/api/research/:id", researchHandler.GetPublishedByID)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// Topic endpoints - /mine must come before :id routes
		api.POST("/topics", topicHandler.ProposeTopic)
		api.GET("/topics/mine", topicHandler.GetMyTopics)
		api.POST("/topics/:id/vote", topicHandler.CastVote)
		api.DELETE("/topics/:id/vote", topicHandler.RetractVote)

		// Notification endpoints
		api.GET("/notifications", notificationHandler.GetNotifications)
		api.GET("/notifications/unread-count", notificationHandler.GetUnreadCount)
		api.POST("/notifications/:id/read", notificationHandler.MarkRead)
		api.POST("/notifications/read-all", notificationHandler.MarkAllRead)
	}

	// Admin routes (protected + admin only)
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware())
	admin.Use(auth.AdminMiddleware())
	{
		admin.GET("/dashboard", adminHandler.GetDashboard)
		admin.GET("/stats", adminHandler.GetPlatformStats)
		admin.GET("/logs", adminHandler.GetAdminLogs)

		// Topic moderation - bulk routes must come before :id routes
		admin.GET("/topics", adminHandler.GetTopics)
		admin.POST("/topics/bulk-approve", adminHandler.BulkApproveTopics)
		admin.POST("/topics/bulk-reject", adminHandler.BulkRejectTopics)
		admin.POST("/topics/bulk-delete", adminHandler.BulkDeleteTopics)
		admin.POST("/topics/:id/approve", adminHandler.ApproveTopic)
		admin.POST("/topics/:id/reject", adminHandler.RejectTopic)
		admin.POST("/topics/:id/convert", adminHandler.ConvertTopic)

		// User management
		admin.GET("/users", adminHandler.GetUsers)
		admin.POST("/users/bulk-suspend", adminHandler.BulkSuspendUsers)
		admin.POST("/users/bulk-activate", adminHandler.BulkActivateUsers)
		admin.POST("/users/bulk-delete", adminHandler.BulkDeleteUsers)
		admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)

		// Research management
		admin.GET("/research", researchHandler.GetAll)
		admin.POST("/research/:id/opportunities", researchHandler.AddOpportunity)
		admin.POST("/research/:id/publish", researchHandler.Publish)
		admin.POST("/research/:id/archive", researchHandler.Archive)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
