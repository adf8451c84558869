package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/workwave/internal/container"
	"github.com/joshua-takyi/workwave/internal/handlers"
	"github.com/joshua-takyi/workwave/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(c *container.Container) *gin.Engine {
	if c.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     c.Config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(c.Logger))
	r.Use(middleware.ErrorHandler(c.Logger))
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(200, gin.H{
				"status":  "OK",
				"service": "workwave-api",
			})
		})

		// Live location channel; positions pushed here are flushed to the
		// store after the configured delay.
		api.GET("/ws/location", handlers.LiveLocation(c.Relay, c.Config.AllowedOrigins, c.Logger))
	}

	workers := api.Group("/workers")
	{
		workers.POST("", handlers.RegisterWorker(c.WorkerService))
		workers.POST("/signin", handlers.SigninWorker(c.WorkerService))
		workers.PUT("/update-status/:workerId", handlers.UpdateWorkerStatus(c.WorkerService))
		workers.PUT("/update-location/:workerId", handlers.UpdateWorkerLocation(c.WorkerService))
		workers.POST("/generate-otp", handlers.GenerateOTP(c.OTPService))
		workers.POST("/verify-otp", handlers.VerifyOTP(c.OTPService))
		workers.GET("/professions", handlers.ListProfessions(c.WorkerService))
		workers.GET("/profession/:profession", handlers.SearchByProfession(c.WorkerService))
		workers.GET("/nearby", handlers.NearbyWorkers(c.WorkerService))
		workers.POST("/:workerId/incrementCallCounter", handlers.IncrementCallCounter(c.WorkerService))
		workers.GET("/:workerId", handlers.GetWorker(c.WorkerService))
	}

	return r
}
