package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"fit-challenge/internal/auth"
	"fit-challenge/internal/config"
	"fit-challenge/internal/database"
	"fit-challenge/internal/handlers"
	"fit-challenge/internal/jobs"
	"fit-challenge/internal/repository"
	"fit-challenge/internal/services"
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

	// Leaderboard cache
	cache := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})

	// Initialize repository
	repo := repository.NewRepository(database.GetDB())

	// Initialize services
	authService := services.NewAuthService(repo)
	walletService := services.NewWalletService(repo)
	challengeService := services.NewChallengeService(repo)
	entryService := services.NewEntryService(repo)
	settlementService := services.NewSettlementService(repo, cache)
	submissionService := services.NewSubmissionService(repo, settlementService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	walletHandler := handlers.NewWalletHandler(walletService)
	challengeHandler := handlers.NewChallengeHandler(challengeService, entryService, settlementService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)

	// Start the challenge closer job
	closerInterval := 60 * time.Second
	if secs, err := strconv.Atoi(cfg.App.CloserIntervalSecs); err == nil && secs > 0 {
		closerInterval = time.Duration(secs) * time.Second
	}
	closer := jobs.NewChallengeCloser(repo, settlementService, closerInterval)
	if err := closer.Start(); err != nil {
		log.Fatalf("Failed to start challenge closer: %v", err)
	}
	defer closer.Stop()

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	}
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
	authRoutes := router.Group("/api/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	// Public challenge reads
	router.GET("/api/challenges", challengeHandler.ListChallenges)
	router.GET("/api/challenges/:id", challengeHandler.GetChallenge)
	router.GET("/api/challenges/:id/leaderboard", challengeHandler.GetLeaderboard)

	// Authenticated routes
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		api.GET("/wallet", walletHandler.GetWallet)
		api.POST("/wallet/deposit", walletHandler.Deposit)
		api.POST("/wallet/withdraw", walletHandler.Withdraw)

		api.POST("/challenges", challengeHandler.CreateChallenge)
		api.POST("/challenges/:id/join", challengeHandler.JoinChallenge)
		api.POST("/challenges/:id/submissions", submissionHandler.Submit)

		api.GET("/challenges/:id/payouts", challengeHandler.GetChallengePayouts)
		api.POST("/challenges/:id/settle", challengeHandler.SettleChallenge)
		api.POST("/payouts/:id/process", challengeHandler.ProcessPayout)

		api.GET("/submissions", submissionHandler.ListPending)
		api.POST("/submissions/:id/validate", submissionHandler.Validate)
	}

	// Start server
	log.Printf("Starting server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
