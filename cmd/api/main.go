package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/alexandruradulescu-neurony/recruitflow/docs" // swagger docs

	"github.com/alexandruradulescu-neurony/recruitflow/internal/config"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/auth"
	httpPlatform "github.com/alexandruradulescu-neurony/recruitflow/internal/platform/http"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/llm"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/logger"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/mailbox"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/postgres"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/redis"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/storage"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/voiceagent"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/whatsapp"
	emailPlatform "github.com/alexandruradulescu-neurony/recruitflow/internal/platform/email"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/scheduler"

	authHandler "github.com/alexandruradulescu-neurony/recruitflow/modules/auth/handler"
	authRepo "github.com/alexandruradulescu-neurony/recruitflow/modules/auth/repository"
	authService "github.com/alexandruradulescu-neurony/recruitflow/modules/auth/service"
	userRepo "github.com/alexandruradulescu-neurony/recruitflow/modules/users/repository"

	appHandler "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/handler"
	appRepo "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/repository"
	appService "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/service"

	candHandler "github.com/alexandruradulescu-neurony/recruitflow/modules/candidates/handler"
	candRepo "github.com/alexandruradulescu-neurony/recruitflow/modules/candidates/repository"
	candService "github.com/alexandruradulescu-neurony/recruitflow/modules/candidates/service"

	posHandler "github.com/alexandruradulescu-neurony/recruitflow/modules/positions/handler"
	posRepo "github.com/alexandruradulescu-neurony/recruitflow/modules/positions/repository"
	posService "github.com/alexandruradulescu-neurony/recruitflow/modules/positions/service"

	callHandler "github.com/alexandruradulescu-neurony/recruitflow/modules/calls/handler"
	callRepo "github.com/alexandruradulescu-neurony/recruitflow/modules/calls/repository"
	callService "github.com/alexandruradulescu-neurony/recruitflow/modules/calls/service"

	evalHandler "github.com/alexandruradulescu-neurony/recruitflow/modules/evaluations/handler"
	evalRepo "github.com/alexandruradulescu-neurony/recruitflow/modules/evaluations/repository"
	evalService "github.com/alexandruradulescu-neurony/recruitflow/modules/evaluations/service"

	cvHandler "github.com/alexandruradulescu-neurony/recruitflow/modules/cvs/handler"
	cvRepo "github.com/alexandruradulescu-neurony/recruitflow/modules/cvs/repository"
	cvService "github.com/alexandruradulescu-neurony/recruitflow/modules/cvs/service"

	msgHandler "github.com/alexandruradulescu-neurony/recruitflow/modules/messaging/handler"
	msgRepo "github.com/alexandruradulescu-neurony/recruitflow/modules/messaging/repository"
	msgService "github.com/alexandruradulescu-neurony/recruitflow/modules/messaging/service"

	webhooksHandler "github.com/alexandruradulescu-neurony/recruitflow/modules/webhooks/handler"
	webhooksService "github.com/alexandruradulescu-neurony/recruitflow/modules/webhooks/service"

	settingsModel "github.com/alexandruradulescu-neurony/recruitflow/modules/settings/model"
	settingsRepo "github.com/alexandruradulescu-neurony/recruitflow/modules/settings/repository"
	settingsService "github.com/alexandruradulescu-neurony/recruitflow/modules/settings/service"

	"github.com/gin-gonic/gin"
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title RecruitFlow API
// @version 1.0
// @description Recruiting pipeline backend: outbound AI voice-call screening, LLM
// @description transcript evaluation, multi-channel CV collection and matching, driven by
// @description a scheduler advancing applications through a strict status lifecycle.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@recruitflow.example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @x-extension-openapi {"example": "value on a json format"}

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting RecruitFlow API server",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	ctx := context.Background()

	// Initialize PostgreSQL
	pgClient, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgClient.Close()
	logger.Info("Connected to PostgreSQL")

	// Run database migrations (MANDATORY: must run before HTTP server starts)
	migrationsPath := "./migrations"
	if err := postgres.RunMigrations(ctx, cfg.Database, logger, migrationsPath); err != nil {
		logger.Fatal("Failed to run database migrations",
			zap.Error(err),
			zap.String("migrations_path", migrationsPath),
		)
	}

	// Initialize Redis
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Connected to Redis")

	// Initialize S3 client (optional - gracefully handle missing config)
	var s3Client *storage.S3Client
	if cfg.S3.Endpoint != "" && cfg.S3.Bucket != "" {
		s3Client, err = storage.NewS3Client(cfg.S3)
		if err != nil {
			logger.Warn("Failed to initialize S3 client, CV file storage will be disabled", zap.Error(err))
		} else {
			logger.Info("S3 client initialized", zap.String("bucket", cfg.S3.Bucket))
		}
	} else {
		logger.Info("S3 configuration not provided, CV file storage will be disabled")
	}

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Error reporting. A blank DSN (the default outside production) leaves sentry.Init
	// a no-op, so every sentry.* call below stays safe to make unconditionally.
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
	}); err != nil {
		logger.Warn("sentry initialization failed", zap.Error(err))
	}
	defer sentry.Flush(2 * time.Second)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(sentrygin.New(sentrygin.Options{Repanic: false}))
	router.Use(httpPlatform.RequestIDMiddleware())
	router.Use(httpPlatform.LoggerMiddleware(logger))
	router.Use(httpPlatform.CORSMiddleware())

	// Swagger documentation (available in development)
	if cfg.Server.Env != "production" {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		logger.Info("Swagger UI available at /swagger/index.html")
	}

	// Health check endpoint
	router.GET("/health", healthCheckHandler(ctx, pgClient, redisClient))

	// Ping endpoint
	router.GET("/ping", pingHandler)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Auth middleware
	authMiddleware := auth.AuthMiddleware(jwtManager)

	// ── Repositories ────────────────────────────────────────────────────────────
	userRepository := userRepo.NewUserRepository(pgClient.Pool)
	tokenRepository := authRepo.NewRefreshTokenRepository(pgClient.Pool)

	applicationRepository := appRepo.NewApplicationRepository(pgClient.Pool)
	candidateRepository := candRepo.NewCandidateRepository(pgClient.Pool)
	positionRepository := posRepo.NewPositionRepository(pgClient.Pool)
	callRepository := callRepo.NewCallRepository(pgClient.Pool)
	evaluationRepository := evalRepo.NewEvaluationRepository(pgClient.Pool)
	cvUploadRepository := cvRepo.NewCVUploadRepository(pgClient.Pool)
	unmatchedInboundRepository := cvRepo.NewUnmatchedInboundRepository(pgClient.Pool)
	templateRepository := msgRepo.NewTemplateRepository(pgClient.Pool)
	messageRepository := msgRepo.NewMessageRepository(pgClient.Pool)
	candidateReplyRepository := msgRepo.NewCandidateReplyRepository(pgClient.Pool)

	// ── External provider clients ───────────────────────────────────────────────
	llmClient := llm.New(cfg.LLM.APIKey)
	voiceAgentClient := voiceagent.New(cfg.VoiceAgent)
	emailClient := emailPlatform.New(cfg.Messaging)
	whatsappClient := whatsapp.New(cfg.Messaging)

	// ── Services ────────────────────────────────────────────────────────────────
	authSvc := authService.NewAuthService(
		userRepository,
		tokenRepository,
		jwtManager,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	applicationSvc := appService.NewApplicationService(applicationRepository, redisClient, logger)
	candidateSvc := candService.NewCandidateService(candidateRepository, logger)
	positionSvc := posService.NewPositionService(positionRepository, logger)

	callSvc := callService.NewCallService(callRepository, voiceAgentClient, applicationSvc, logger)

	// messagingSvc is constructed before evaluationSvc so its SendCVRequest method can be
	// injected as evaluations/ports.CVRequestTrigger — evaluations never imports messaging
	// directly, avoiding an import cycle between the two modules.
	messagingSvc := msgService.NewMessagingService(
		templateRepository,
		messageRepository,
		candidateReplyRepository,
		applicationRepository,
		applicationSvc,
		candidateRepository,
		positionRepository,
		emailClient,
		whatsappClient,
		logger,
	)

	evaluationSvc := evalService.NewEvaluationService(
		evaluationRepository,
		llmClient,
		callRepository,
		applicationRepository,
		applicationSvc,
		candidateRepository,
		positionRepository,
		messagingSvc,
		cfg.LLM.ScoringModel,
		cfg.LLM.MaxTokens,
		logger,
	)

	cvSvc := cvService.NewCVService(
		cvUploadRepository,
		unmatchedInboundRepository,
		applicationRepository,
		applicationSvc,
		candidateRepository,
		llmClient,
		s3Client,
		cfg.LLM.FastModel,
		logger,
	)

	elevenLabsWebhookSvc := webhooksService.NewElevenLabsWebhookService(callSvc, evaluationSvc, cfg.VoiceAgent.WebhookSecret, logger)
	whapiWebhookSvc := webhooksService.NewWhapiWebhookService(messagingSvc, cvSvc, cfg.Messaging.WhatsAppWebhookSecret, cfg.Messaging.WhatsAppToken, cfg.Messaging.DownloadTimeout, logger)

	// ── Handlers ─────────────────────────────────────────────────────────────────
	authHdl := authHandler.NewAuthHandler(authSvc)
	applicationHdl := appHandler.NewApplicationHandler(applicationSvc)
	candidateHdl := candHandler.NewCandidateHandler(candidateSvc)
	positionHdl := posHandler.NewPositionHandler(positionSvc)
	callHdl := callHandler.NewCallHandler(callSvc)
	evaluationHdl := evalHandler.NewEvaluationHandler(evaluationSvc)
	cvHdl := cvHandler.NewCVHandler(cvUploadRepository, unmatchedInboundRepository, cvSvc)
	messagingHdl := msgHandler.NewMessagingHandler(templateRepository, messageRepository, candidateReplyRepository)
	webhooksHdl := webhooksHandler.NewWebhooksHandler(elevenLabsWebhookSvc, whapiWebhookSvc, logger)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		authHdl.RegisterRoutes(v1)
		applicationHdl.RegisterRoutes(v1, authMiddleware)
		candidateHdl.RegisterRoutes(v1, authMiddleware)
		positionHdl.RegisterRoutes(v1, authMiddleware)
		callHdl.RegisterRoutes(v1, authMiddleware)
		evaluationHdl.RegisterRoutes(v1, authMiddleware)
		cvHdl.RegisterRoutes(v1, authMiddleware)
		messagingHdl.RegisterRoutes(v1, authMiddleware)
		webhooksHdl.RegisterRoutes(v1)
	}

	// ── Scheduler ────────────────────────────────────────────────────────────────
	settingRepository := settingsRepo.NewSettingRepository(pgClient.Pool)
	settingSvc := settingsService.NewSettingService(settingRepository, logger)
	if err := settingSvc.EnsureDefault(ctx, settingsModel.MailboxPollEnabledKey, cfg.Scheduler.MailboxPollEnabled); err != nil {
		logger.Warn("failed to seed mailbox_poll_enabled setting", zap.Error(err))
	}
	gmailMailbox := mailbox.NewGmailClient(cfg.Mailbox)

	sched := scheduler.New(
		cfg.Scheduler,
		cfg.VoiceAgent.BatchChunkSize,
		redisClient,
		applicationSvc,
		candidateRepository,
		positionRepository,
		callSvc,
		evaluationSvc,
		messagingSvc,
		cvSvc,
		gmailMailbox,
		settingSvc,
		logger,
	)
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	sched.Start(schedulerCtx)
	defer stopScheduler()

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopScheduler()
	if err := sched.Wait(); err != nil {
		logger.Warn("scheduler jobs did not exit cleanly", zap.Error(err))
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// healthCheckHandler godoc
// @Summary Health Check
// @Description Check the health status of the application and its dependencies
// @Tags system
// @Produce json
// @Success 200 {object} http.HealthResponse
// @Router /health [get]
func healthCheckHandler(ctx context.Context, pgClient *postgres.Client, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		services := make(map[string]string)

		// Check PostgreSQL
		if err := pgClient.Health(ctx); err != nil {
			services["postgres"] = "down"
		} else {
			services["postgres"] = "up"
		}

		// Check Redis
		if err := redisClient.Health(ctx); err != nil {
			services["redis"] = "down"
		} else {
			services["redis"] = "up"
		}

		httpPlatform.RespondWithHealth(c, services)
	}
}

// pingHandler godoc
// @Summary Ping
// @Description Simple ping endpoint to check if the API is responding
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func pingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
