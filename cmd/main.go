package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/quizgrader/config"
	_ "github.com/lshigami/quizgrader/docs" // Swagger docs
	"github.com/lshigami/quizgrader/internal/cache"
	"github.com/lshigami/quizgrader/internal/controller"
	adminctrl "github.com/lshigami/quizgrader/internal/controller/admin"
	userctrl "github.com/lshigami/quizgrader/internal/controller/user"
	"github.com/lshigami/quizgrader/internal/database"
	"github.com/lshigami/quizgrader/internal/events"
	"github.com/lshigami/quizgrader/internal/logger"
	"github.com/lshigami/quizgrader/internal/metrics"
	"github.com/lshigami/quizgrader/internal/repository"
	"github.com/lshigami/quizgrader/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Quiz Grader API
// @version 1.0
// @description Quiz authoring, attempt submission with all-or-nothing grading, and attempt history.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			database.NewTxManager,
			cache.NewRedisClient,
			cache.NewAttemptCache,
			events.NewPublisher,
			NewGinEngine,
		),

		// Repositories Layer
		fx.Provide(
			repository.NewQuizRepository,
			repository.NewQuestionRepository,
			repository.NewAttemptRepository,
			repository.NewGradedAnswerRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewGeminiLLMService,
			func(g *service.GeminiLLMService) service.AIGrader { return g },
			service.NewStrategySet,
			service.NewScoreAggregatorService,
			service.NewSubmissionValidator,
			service.NewAttemptSubmissionService,
			service.NewAttemptQueryService,
			service.NewAdminQuizService,
			service.NewUserQuizService,
		),

		// API Controllers Layer
		fx.Provide(
			adminctrl.NewAdminQuizController,
			userctrl.NewUserQuizController,
			controller.NewHealthController,
		),

		fx.Invoke(database.AutoMigrate),
		fx.Invoke(RegisterClosers),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Application stop failed")
	}
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// URL: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", metrics.Handler())

	return r
}

// RegisterClosers releases external clients after the HTTP server stops.
func RegisterClosers(lc fx.Lifecycle, db *gorm.DB, gemini *service.GeminiLLMService, redisClient *redis.Client, publisher events.Publisher) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			var errs []error
			if err := gemini.Close(); err != nil {
				errs = append(errs, err)
			}
			if redisClient != nil {
				if err := redisClient.Close(); err != nil {
					errs = append(errs, err)
				}
			}
			if err := publisher.Close(); err != nil {
				errs = append(errs, err)
			}
			if sqlDB, err := db.DB(); err == nil {
				if err := sqlDB.Close(); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		},
	})
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	adminQuizCtrl *adminctrl.AdminQuizController,
	userQuizCtrl *userctrl.UserQuizController,
	healthCtrl *controller.HealthController,
) {
	router.GET("/healthz", healthCtrl.Health)

	adminAPIGroup := router.Group("/api/v1/admin")
	{
		quizzesAdminGroup := adminAPIGroup.Group("/quizzes")
		quizzesAdminGroup.POST("", adminQuizCtrl.CreateQuiz)
	}

	userAPIGroup := router.Group("/api/v1")
	{
		userAPIGroup.GET("/quizzes", userQuizCtrl.GetAllQuizzes)
		userAPIGroup.GET("/quizzes/:quiz_id", userQuizCtrl.GetQuizDetails)

		userAPIGroup.POST("/quizzes/:quiz_id/attempts", userQuizCtrl.SubmitAttempt)
		userAPIGroup.GET("/quizzes/:quiz_id/my-attempts", userQuizCtrl.GetUserAttempts)
		userAPIGroup.GET("/attempts/:attempt_id", userQuizCtrl.GetAttemptDetails)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Quiz grader API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}
