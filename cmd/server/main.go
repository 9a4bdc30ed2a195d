package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/sgvihar/society-server/internal/api"
	"github.com/sgvihar/society-server/internal/config"
	"github.com/sgvihar/society-server/internal/repository"
	"github.com/sgvihar/society-server/internal/service"
	"github.com/sgvihar/society-server/internal/utils"
)

func main() {
	logger := utils.NewLogger()

	// Load .env if present; real environments set variables directly
	if err := godotenv.Load(); err == nil {
		logger.Info("Loaded configuration from .env")
	}

	// Load configuration
	cfg := config.LoadConfig()

	// Choose the storage backend
	var repo repository.Repository
	if cfg.Database.Backend == "memory" {
		logger.Info("Using in-memory storage, data will not survive restarts")
		repo = repository.NewMemoryRepository()
	} else {
		db, err := config.SetupDatabase(cfg)
		if err != nil {
			logger.Fatal("Failed to set up database: %v", err)
		}
		defer db.Close()
		repo = repository.NewPostgresRepository(db)
	}

	// Create service
	svc := service.NewDefaultService(repo, cfg.Auth.JWTSecret,
		cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name)

	// Seed the admin account and default expense sources
	if err := svc.SeedDefaults(context.Background()); err != nil {
		logger.Fatal("Failed to seed defaults: %v", err)
	}

	// Create API handler
	handler := api.NewHandler(svc)

	// Set up Gin router
	router := gin.Default()

	// Add middleware for JWT secret
	router.Use(func(c *gin.Context) {
		c.Set("jwtSecret", []byte(cfg.Auth.JWTSecret))
		c.Next()
	})

	// Set up routes
	handler.SetupRoutes(router)

	// Start server
	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Starting server on %s", serverAddr)
	if err := http.ListenAndServe(serverAddr, router); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
