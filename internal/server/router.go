package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/soundbridge-backend/internal/handlers"
	"github.com/yungbote/soundbridge-backend/internal/middleware"
)

type RouterConfig struct {
	AttemptHandler        *handlers.AttemptHandler
	RecommendationHandler *handlers.RecommendationHandler
	AssessmentHandler     *handlers.AssessmentHandler
	ProgressHandler       *handlers.ProgressHandler
	RequestLogger         *middleware.RequestLogger
	ServiceName           string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))
	router.Use(otelgin.Middleware(cfg.ServiceName))
	if cfg.RequestLogger != nil {
		router.Use(cfg.RequestLogger.Handler())
	}

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/attempts", cfg.AttemptHandler.RecordAttempt)

		users := api.Group("/users/:id")
		users.GET("/recommendation", cfg.RecommendationHandler.GetRecommendation)
		users.GET("/cognitive-status", cfg.RecommendationHandler.GetCognitiveStatus)
		users.GET("/clinical-assessment", cfg.AssessmentHandler.GetClinicalAssessment)
		users.GET("/clinical-recommendations", cfg.AssessmentHandler.GetClinicalRecommendations)
		users.GET("/progress", cfg.ProgressHandler.GetProgress)
	}

	return router
}
