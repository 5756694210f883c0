package main

import (
	"book_review/internal/api"        // Custom package for API handlers
	"book_review/internal/config"     // Custom package for configuration
	"book_review/internal/middleware" // Custom package for middleware
	"context"                         // context package is needed for Redis operations
	"log"                             // log package is needed for logging
	"net/http"                        // HTTP status codes

	// For loading .env files
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// A missing signing secret is a fatal misconfiguration, not something to
	// discover lazily on the first login request
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET is not set")
	}

	// Connect to the database; TranslateError surfaces engine-level unique
	// key violations as gorm.ErrDuplicatedKey
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Bound the connection pool; requests beyond the bound queue for a connection
	sqlDB, err := db.DB()
	if err != nil {
		logrus.Fatalf("failed to access DB pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(10) // Fixed-size pool
	sqlDB.SetMaxIdleConns(10) // Keep released connections around

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Liveness endpoint
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Backend API is running. Please use the /api endpoint for requests.")
	})

	// All API routes live under the /api prefix; every route runs inside the
	// transactional wrapper
	apiGroup := r.Group("/api")

	// Auth routes (public)
	apiGroup.POST("/signup", api.Transactional(db, api.Signup))              // Registration endpoint
	apiGroup.POST("/login", api.Transactional(db, api.Login(cfg.JWTSecret))) // Login endpoint

	// Book routes
	auth := middleware.JWTAuthMiddleware(cfg.JWTSecret)                             // Identity gate for protected routes
	apiGroup.POST("/books", auth, api.Transactional(db, api.AddBook(redisClient)))  // Add book (authenticated)
	apiGroup.GET("/books", api.Transactional(db, api.GetBooks(redisClient)))        // List books (public)
	apiGroup.GET("/books/:id", api.Transactional(db, api.GetBookByID(redisClient))) // Book details + reviews (public)
	apiGroup.GET("/search", api.Transactional(db, api.SearchBooks(redisClient)))    // Search books (public)

	// Review routes (authenticated)
	apiGroup.POST("/books/:id/reviews", auth, api.Transactional(db, api.AddReview(redisClient))) // Add review endpoint
	apiGroup.PUT("/reviews/:id", auth, api.Transactional(db, api.UpdateReview(redisClient)))     // Update review endpoint
	apiGroup.DELETE("/reviews/:id", auth, api.Transactional(db, api.DeleteReview(redisClient)))  // Delete review endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
