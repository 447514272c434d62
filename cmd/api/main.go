package main

import (
	"log"
	"os"
	"time"

	"github.com/botiapp/watertruck-backend/internal/database"
	"github.com/botiapp/watertruck-backend/internal/handlers"
	"github.com/botiapp/watertruck-backend/internal/middleware"
	"github.com/botiapp/watertruck-backend/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Get underlying SQL DB instance
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := database.SeedAdmin(db); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	if err := services.InitRedis(); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	// Firebase is optional; without it notifications are persisted only
	fcmClient, err := services.InitFirebase()
	if err != nil {
		log.Printf("Firebase initialization warning: %v", err)
	}
	notifier := services.NewNotifier(db, fcmClient)

	store, err := services.InitStorage()
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	hub := services.NewChatHub()

	r := gin.Default()

	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	// Serve locally stored uploads
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "/app/uploads"
	}
	r.Static("/uploads", uploadDir)

	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
		}

		api.GET("/reviews/driver/:driverId", handlers.GetDriverReviews(db))
		api.GET("/notifications/public_key", handlers.PublicKey())

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			drivers := protected.Group("/drivers")
			{
				drivers.GET("/profile", handlers.GetDriverProfile(db))
				drivers.PUT("/profile", handlers.UpdateDriverProfile(db))
				drivers.POST("/status", handlers.UpdateDriverAvailability(db))
				drivers.POST("/location", handlers.UpdateDriverLocation(db, notifier))
				drivers.GET("/nearby", handlers.GetNearbyDrivers(db))
				drivers.GET("/stats", handlers.GetDriverStats(db))
			}

			orders := protected.Group("/orders")
			{
				orders.POST("", handlers.CreateOrder(db))
				orders.GET("/my", handlers.GetMyOrders(db))
				orders.GET("/active", handlers.GetActiveOrder(db))
				orders.GET("/all", handlers.GetAllOrders(db))
				orders.PUT("/:id/status", handlers.UpdateOrderStatus(db, notifier))
			}

			protected.POST("/reviews/:orderId", handlers.CreateReview(db))

			chat := protected.Group("/chat")
			{
				chat.GET("/:orderId", handlers.GetChatHistory(db))
				chat.GET("/ws/:orderId", handlers.ChatWebSocket(db, hub))
				chat.POST("/:orderId/upload", handlers.UploadChatMedia(db, store))
			}

			notifications := protected.Group("/notifications")
			{
				notifications.POST("/subscribe", handlers.Subscribe(db))
				notifications.GET("", handlers.ListNotifications(db))
				notifications.POST("/:id/read", handlers.MarkNotificationRead(db))
				notifications.POST("/broadcast", handlers.BroadcastNotification(db, notifier))
			}

			protected.POST("/safety/sos", handlers.TriggerSOS(db, notifier))
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
