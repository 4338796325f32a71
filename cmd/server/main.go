package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"mockmate/interview/internal/agent"
	"mockmate/interview/internal/archive"
	"mockmate/interview/internal/config"
	"mockmate/interview/internal/handlers"
	"mockmate/interview/internal/jobs"
	"mockmate/interview/internal/llm"
	_ "mockmate/interview/internal/llm/gemini"
	_ "mockmate/interview/internal/llm/httpagent"
	"mockmate/interview/internal/orchestrator"
	"mockmate/interview/internal/prompts"
	"mockmate/interview/internal/routers"
	"mockmate/interview/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func registerRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler, reportHandler *handlers.ReportHandler, healthHandler *handlers.HealthHandler) {
	routers.HealthRoutes(router, healthHandler)
	routers.InterviewRoutes(router, interviewHandler, reportHandler)
}

// Helper functions for environment variables
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// initDatabase initializes the PostgreSQL connection backing the report archive
func initDatabase() (*gorm.DB, error) {
	host := getEnv("POSTGRES_HOST", "localhost")
	user := getEnv("POSTGRES_USER", "postgres")
	password := getEnv("POSTGRES_PASSWORD", "postgres")
	dbname := getEnv("POSTGRES_DB", "postgres")
	port := getEnv("POSTGRES_PORT", "5432")
	sslmode := getEnv("POSTGRES_SSLMODE", "disable")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, password, dbname, port, sslmode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func main() {
	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.Duration("agent_timeout", cfg.AgentTimeout),
		zap.Int("total_video_questions", cfg.TotalVideoQuestions),
		zap.Bool("session_delegation", cfg.SessionDelegation))

	// prompt manager
	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	// agent provider based on configuration
	provider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize agent provider", zap.Error(err))
	}

	gateway := agent.NewGateway(provider, cfg.AgentTimeout, logger)
	sessions := store.NewSessionStore(cfg.TotalVideoQuestions)

	// report archive is optional: without a database the service still runs,
	// reports just don't survive the process
	var reportArchive *archive.Store
	var reportHandler *handlers.ReportHandler
	if getEnv("ARCHIVE_ENABLED", "true") == "true" {
		db, err := initDatabase()
		if err != nil {
			logger.Error("Failed to initialize database, report archive will be disabled", zap.Error(err))
		} else {
			reportArchive, err = archive.New(db)
			if err != nil {
				logger.Error("Failed to initialize report archive", zap.Error(err))
				reportArchive = nil
			} else {
				reportHandler = handlers.NewReportHandler(reportArchive, logger)
				logger.Info("Report archive initialized successfully")
			}
		}
	}

	orchestratorOpts := orchestrator.Options{
		DelegateSession: cfg.SessionDelegation,
	}
	if reportArchive != nil {
		orchestratorOpts.Archive = reportArchive
	}
	interviewOrchestrator := orchestrator.New(sessions, gateway, promptManager, logger, orchestratorOpts)

	interviewHandler := handlers.NewInterviewHandler(interviewOrchestrator, logger)
	healthHandler := handlers.NewHealthHandler(provider, promptManager, sessions, cfg)

	// janitor drops stale sessions so abandoned interviews don't pile up
	maxSessionAge, _ := time.ParseDuration(getEnv("SESSION_MAX_AGE", "2h"))
	janitor := jobs.NewSessionJanitor(interviewOrchestrator, &jobs.JanitorConfig{
		Schedule:      getEnv("SESSION_JANITOR_SCHEDULE", "*/30 * * * *"),
		MaxSessionAge: maxSessionAge,
		Enabled:       getEnv("SESSION_JANITOR_ENABLED", "true") == "true",
	})
	if err := janitor.Start(); err != nil {
		logger.Error("Failed to start session janitor", zap.Error(err))
	}

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{getEnv("CORS_ORIGIN", "http://localhost:5173")},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(120*time.Second))

	registerRoutes(router, interviewHandler, reportHandler, healthHandler)

	serverAddr := ":" + getEnv("PORT", "8080")

	// http server with timeouts; writes stay generous because a single
	// request may sit behind a slow agent call
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * cfg.AgentTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// starting server in a goroutine
	go func() {
		logger.Info("Interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	janitor.Stop()

	// graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Interview service exited")
}
