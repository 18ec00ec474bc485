package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/missionly/missionly-core/entitlement"
	"github.com/missionly/missionly-core/repository"
	"github.com/missionly/missionly-core/utils"
)

type Repositories struct {
	Users          repository.UserRepository
	Plans          repository.PlanRepository
	Subscriptions  repository.SubscriptionRepository
	Missions       repository.MissionRepository
	Applications   repository.ApplicationRepository
	Workers        repository.WorkerRepository
	Establishments repository.EstablishmentRepository
}

func SetupRoutes(e *echo.Echo, repos Repositories, resolver *entitlement.Resolver, cloudinaryService *utils.CloudinaryService) {
	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
		},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.PATCH, echo.OPTIONS},
	}))

	// Logger middleware
	e.Use(middleware.Logger())

	// Recover middleware
	e.Use(middleware.Recover())

	// Health check
	e.GET("/ping", func(c echo.Context) error {
		return c.JSON(200, response{
			Success: true,
			Data:    "pong",
		})
	})

	callers := newCallerResolver(repos.Users, repos.Subscriptions, resolver)

	// Auth routes
	authHandler := NewAuthHandler(repos.Users)
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Payment provider callbacks (relayed by the payment gateway adapter)
	subscriptionHandler := NewSubscriptionHandler(repos.Subscriptions, repos.Plans, repos.Users)
	e.POST("/api/webhooks/payment", subscriptionHandler.PaymentWebhook)

	// Public pricing page
	planHandler := NewPlanHandler(repos.Plans)
	e.GET("/api/plans", planHandler.ListPlans)

	// Protected routes (require JWT)
	jwtMiddleware := NewJWTMiddleware()
	protected := e.Group("/api")
	protected.Use(jwtMiddleware.ValidateJWT)

	// Mission feed and actions
	missionHandler := NewMissionHandler(repos.Missions, repos.Applications, repos.Establishments, callers)
	missions := protected.Group("/missions")
	missions.GET("", missionHandler.GetMissions)
	missions.POST("", missionHandler.CreateMission)
	missions.POST("/:id/apply", missionHandler.Apply)
	missions.DELETE("/:id/apply", missionHandler.Withdraw)

	// Worker search and profile
	workerHandler := NewWorkerHandler(repos.Workers, callers)
	protected.GET("/workers", workerHandler.SearchWorkers)
	workerProfile := protected.Group("/worker/profile")
	workerProfile.GET("", workerHandler.GetProfile)
	workerProfile.PUT("", workerHandler.UpdateProfile)

	// Establishment profile
	establishmentHandler := NewEstablishmentHandler(repos.Establishments, cloudinaryService)
	establishment := protected.Group("/establishment")
	establishment.GET("", establishmentHandler.GetEstablishment)
	establishment.PUT("", establishmentHandler.UpdateEstablishment)
	establishment.POST("/logo", establishmentHandler.UploadLogo)
	establishment.DELETE("/logo", establishmentHandler.RemoveLogo)

	// Subscription routes
	subscription := protected.Group("/subscription")
	subscription.GET("", subscriptionHandler.GetSubscription)
	subscription.POST("", subscriptionHandler.Subscribe)
	subscription.POST("/cancel", subscriptionHandler.Cancel)

	// Admin back office
	admin := protected.Group("/admin")
	admin.Use(jwtMiddleware.RequireAdmin)
	admin.PUT("/plans", planHandler.UpsertPlan)
	admin.DELETE("/plans/:role/:code", planHandler.DeletePlan)
	admin.PUT("/users/:id/validate", authHandler.ValidateUser)
}
