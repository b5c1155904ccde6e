package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/yungbote/soundbridge-backend/internal/cache"
	"github.com/yungbote/soundbridge-backend/internal/db"
	"github.com/yungbote/soundbridge-backend/internal/engine"
	"github.com/yungbote/soundbridge-backend/internal/handlers"
	"github.com/yungbote/soundbridge-backend/internal/logger"
	"github.com/yungbote/soundbridge-backend/internal/middleware"
	"github.com/yungbote/soundbridge-backend/internal/observability"
	"github.com/yungbote/soundbridge-backend/internal/repos"
	"github.com/yungbote/soundbridge-backend/internal/server"
	"github.com/yungbote/soundbridge-backend/internal/services"
	"github.com/yungbote/soundbridge-backend/internal/store"
	"github.com/yungbote/soundbridge-backend/internal/utils"
	"gorm.io/gorm"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	port := utils.GetEnv("PORT", "8080", log)
	paramsFile := utils.GetEnv("ENGINE_PARAMS_FILE", "", log)
	environment := utils.GetEnv("ENVIRONMENT", "development", log)

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "soundbridge",
		Environment: environment,
	})

	// Engine parameters
	params, err := engine.LoadParams(paramsFile)
	if err != nil {
		log.Error("Failed to load engine params", "path", paramsFile, "error", err)
		os.Exit(1)
	}

	// Database. Without one the engine still runs, it just forgets on restart.
	var (
		gormDB       *gorm.DB
		profileStore engine.ProfileStore
	)
	var attemptRepo repos.AttemptRecordRepo
	gormService, err := db.NewGormService(log)
	if err != nil {
		log.Warn("Database init failed, running with in-memory state only", "error", err)
		profileStore = store.NewMemoryStore()
		attemptRepo = store.NewMemoryAttemptLog()
	} else {
		if err = gormService.AutoMigrateAll(); err != nil {
			log.Error("Auto migration failed", "error", err)
			os.Exit(1)
		}
		gormDB = gormService.DB()

		// Repos
		log.Info("Setting up Repos from main...")
		attemptRepo = repos.NewAttemptRecordRepo(gormDB, log)
		profileRepo := repos.NewLearningProfileRepo(gormDB, log)
		skillRepo := repos.NewSkillMemoryRepo(gormDB, log)
		profileStore = store.NewGormProfileStore(profileRepo, skillRepo, log)
	}

	// Cache
	snapCache := cache.NewFromEnv(log)

	// Engine
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	orch := engine.NewOrchestrator(profileStore, rng, params, log)

	// Services
	log.Info("Setting up Services from main...")
	attemptService := services.NewAttemptService(gormDB, log, orch, attemptRepo, snapCache)
	recommendationService := services.NewRecommendationService(log, orch)
	assessmentService := services.NewAssessmentService(log, params, attemptRepo, snapCache)
	progressService := services.NewProgressService(log, attemptRepo)

	// Handlers
	log.Info("Setting up Handlers from main...")
	attemptHandler := handlers.NewAttemptHandler(log, attemptService)
	recommendationHandler := handlers.NewRecommendationHandler(log, recommendationService)
	assessmentHandler := handlers.NewAssessmentHandler(log, assessmentService)
	progressHandler := handlers.NewProgressHandler(log, progressService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		AttemptHandler:        attemptHandler,
		RecommendationHandler: recommendationHandler,
		AssessmentHandler:     assessmentHandler,
		ProgressHandler:       progressHandler,
		RequestLogger:         middleware.NewRequestLogger(log),
		ServiceName:           "soundbridge",
	})

	log.Info("Starting server...", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server exited", "error", err)
	}
	if shutdownOTel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownOTel(ctx)
	}
}
