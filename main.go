package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/missionly/missionly-core/db"
	"github.com/missionly/missionly-core/entitlement"
	"github.com/missionly/missionly-core/handler"
	"github.com/missionly/missionly-core/model"
	"github.com/missionly/missionly-core/repository"
	"github.com/missionly/missionly-core/utils"
)

func main() {
	// Load environment variables
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("cannot load .env file")
	}

	// Initialize database
	postgres := db.NewPostgres()

	// Auto-migrate models
	err = postgres.AutoMigrate(
		&model.User{},
		&model.Plan{},
		&model.Subscription{},
		&model.Mission{},
		&model.Application{},
		&model.WorkerProfile{},
		&model.Establishment{},
	)
	if err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	// Entitlement cache is optional; without redis every resolution goes to
	// the plan registry, which is correct, just uncached.
	var entitlementCache *repository.EntitlementCache
	var cache entitlement.Cache
	var planInvalidator repository.PlanInvalidator
	var userInvalidator repository.UserInvalidator
	if redisClient := db.NewRedis(); redisClient != nil {
		entitlementCache = repository.NewEntitlementCache(redisClient)
		cache = entitlementCache
		planInvalidator = entitlementCache
		userInvalidator = entitlementCache
		logrus.Info("Entitlement cache enabled")
	}

	// Initialize repositories
	repos := handler.Repositories{
		Users:          repository.NewUserRepository(postgres),
		Plans:          repository.NewPlanRepository(postgres, planInvalidator),
		Subscriptions:  repository.NewSubscriptionRepository(postgres, userInvalidator),
		Missions:       repository.NewMissionRepository(postgres),
		Applications:   repository.NewApplicationRepository(postgres),
		Workers:        repository.NewWorkerRepository(postgres),
		Establishments: repository.NewEstablishmentRepository(postgres),
	}

	resolver := entitlement.NewResolver(repos.Plans, cache)

	// Initialize Cloudinary service (optional - logo uploads fail without it)
	var cloudinaryService *utils.CloudinaryService
	cloudinaryService, err = utils.NewCloudinaryService()
	if err != nil {
		logrus.Warnf("Cloudinary not configured: %v. Logo uploads will not work.", err)
		cloudinaryService = nil
	}

	// Initialize Echo
	e := echo.New()

	// Setup routes
	handler.SetupRoutes(e, repos, resolver, cloudinaryService)

	// Shared context with cancel
	_, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// HTTP server
	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.Infof("HTTP server starting on :%s", port)

		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logrus.Errorf("HTTP server error: %v", err)
		}
	}()

	// Signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutdown signal received")

	// Initiate graceful shutdown
	cancel()
	ctxTimeout, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(ctxTimeout); err != nil {
		logrus.Errorf("Server shutdown error: %v", err)
	}

	wg.Wait()
	logrus.Info("All services shut down gracefully")
}
