package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"energienachweise/marketplace-backend/internal/auth"
	"energienachweise/marketplace-backend/internal/config"
	"energienachweise/marketplace-backend/internal/database"
	"energienachweise/marketplace-backend/internal/projects"
	"energienachweise/marketplace-backend/internal/users"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		logger.Info("Loaded environment from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	// Connect to database
	db, err := database.Open(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate schema", zap.Error(err))
	}
	if err := database.SeedAdmin(db, cfg.Admin, logger); err != nil {
		logger.Fatal("Failed to seed admin account", zap.Error(err))
	}

	// Identity store and access control
	usersRepo := users.NewRepository(db)
	usersService := users.NewService(usersRepo, logger)
	usersHandler := users.NewHandler(usersService, logger)

	tokens := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.Algorithm, cfg.Auth.AccessExpiry)
	authMiddleware := auth.NewMiddleware(tokens, usersService)
	authHandler := auth.NewHandler(tokens, usersService, logger)

	// Project lifecycle engine
	projectsRepo := projects.NewRepository(db)
	projectsService := projects.NewService(projectsRepo, usersService, logger)
	projectsHandler := projects.NewHandler(projectsService, logger)

	// Setup router
	router := gin.Default()
	router.Use(corsMiddleware(cfg.CORS.AllowedOrigins))

	auth.RegisterRoutes(router, authHandler)
	users.RegisterRoutes(router, usersHandler, authMiddleware)
	projects.RegisterRoutes(router, projectsHandler, authMiddleware)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Out-of-band expiry of stale expert requests
	sweeper := projects.NewExpirySweeper(projectsRepo, cfg.Requests.ExpiryAfter, logger)
	if err := sweeper.Start(cfg.Requests.SweepSpec); err != nil {
		logger.Fatal("Failed to start expiry sweeper", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    cfg.Server.GetServerAddr(),
		Handler: router,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Forced shutdown", zap.Error(err))
	}
}

// corsMiddleware allows the configured origins with bearer-token requests
// and no credentials.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowed[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
