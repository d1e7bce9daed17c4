package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"voxa/internal/config"
	"voxa/internal/engine"
	"voxa/internal/engine/vapi"
	"voxa/internal/evaluation"
	"voxa/internal/handlers"
	"voxa/internal/interview"
	"voxa/internal/jobs"
	"voxa/internal/llm"
	_ "voxa/internal/llm/gemini"
	_ "voxa/internal/llm/openai"
	"voxa/internal/metrics"
	"voxa/internal/middleware"
	"voxa/internal/models"
	"voxa/internal/prompts"
	"voxa/internal/questions"
	"voxa/internal/repositories"
	"voxa/internal/routers"
)

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.User{}, &models.InterviewSession{}); err != nil {
		return nil, err
	}
	return db, nil
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.Duration("interview_duration", cfg.InterviewDuration),
		zap.Duration("error_grace", cfg.ErrorGrace))

	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	aiProvider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err))
	}

	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	sessionRepo := &repositories.SessionRepository{DB: db}
	userRepo := &repositories.UserRepository{DB: db}

	questionService := questions.NewService(aiProvider, promptManager, logger)
	evalService := evaluation.NewService(aiProvider, promptManager, sessionRepo, logger)

	manager := interview.NewManager(interview.ManagerConfig{
		Redis: rdb,
		Engine: func() engine.Engine {
			return vapi.NewClient(cfg.VoiceEngineURL, cfg.VoiceEngineKey, logger)
		},
		Questions: questionService,
		Persister: evalService,
		Prompts:   promptManager,
		Duration:  cfg.InterviewDuration,
		Grace:     cfg.ErrorGrace,
		Logger:    logger,
	})

	cleanupJob := jobs.NewSessionCleanupJob(sessionRepo, &jobs.CleanupConfig{
		Schedule:  cfg.CleanupSchedule,
		Retention: cfg.AnonymousRetention,
		Enabled:   cfg.CleanupEnabled,
	}, logger)
	if err := cleanupJob.Start(); err != nil {
		logger.Error("Failed to start session cleanup job", zap.Error(err))
	}

	interviewHandler := handlers.NewInterviewHandler(questionService, evalService, sessionRepo, logger)
	liveHandler := handlers.NewLiveHandler(manager, logger)
	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret, logger)
	healthHandler := handlers.NewHealthHandler(db, rdb, aiProvider)

	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "https://voxa.app"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	router.Use(chimiddleware.RequestID, chimiddleware.RealIP, chimiddleware.Recoverer)
	router.Use(metrics.Middleware())
	router.Use(middleware.AuthGate(cfg.JWTSecret))

	routers.HealthRoutes(router, healthHandler)
	routers.AuthRoutes(router, authHandler)
	routers.InterviewRoutes(router, interviewHandler, liveHandler, cfg.JWTSecret)
	router.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Voxa server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Voxa server shutting down...")
	cleanupJob.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Voxa server exited")
}
