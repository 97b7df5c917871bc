package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/xiajason/jobfirst-future/internal/config"
	"github.com/xiajason/jobfirst-future/internal/handler"
	"github.com/xiajason/jobfirst-future/internal/middleware"
	"github.com/xiajason/jobfirst-future/internal/repository"
	"github.com/xiajason/jobfirst-future/internal/service"
	"github.com/xiajason/jobfirst-future/pkg/database"
	"github.com/xiajason/jobfirst-future/pkg/redis"
)

func main() {
	cfg := config.Load()

	if cfg.Environment == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	db, err := database.NewPostgresConnection(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnLifetime)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	redisClient, err := redis.NewRedisClient(cfg.RedisURL, cfg.RedisPoolSize, cfg.RedisPoolWait)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Repositories
	resumeRepo := repository.NewResumeMetadataRepository(db)
	jobRepo := repository.NewJobRepository(db)
	consentRepo := repository.NewConsentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	documentRepo := repository.NewDocumentRepository(redisClient)
	usageRepo := repository.NewUsageStatsRepository(redisClient)
	vectorRepo, err := repository.NewVectorRepository(cfg.VectorDimension)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build vector index")
	}

	// Embedding provider: loaded lazily on first use so a slow or offline
	// backend does not block startup.
	embedder := service.NewLazyEmbeddingProvider(cfg.VectorDimension, func(ctx context.Context) (service.EmbeddingProvider, error) {
		if cfg.EmbeddingBackend == "gemini" {
			return service.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel, cfg.VectorDimension)
		}
		return service.NewHashingEmbedder(cfg.VectorDimension), nil
	})

	// Services
	consentService := service.NewConsentService(consentRepo, auditRepo, usageRepo)
	recordService := service.NewRecordService(resumeRepo, documentRepo, vectorRepo, auditRepo, consentService, cfg.VectorDimension)
	matchingService := service.NewMatchingService(
		recordService, consentService, jobRepo, vectorRepo, embedder, auditRepo,
		cfg.VectorDimension, cfg.DefaultMatchLimit, cfg.MaxCandidates,
	)
	indexService := service.NewIndexService(jobRepo, vectorRepo, embedder, cfg.MaxCandidates)

	indexCtx, stopIndexer := context.WithCancel(context.Background())
	defer stopIndexer()
	go func() {
		if err := indexService.RefreshJobIndex(indexCtx); err != nil && indexCtx.Err() == nil {
			log.Error().Err(err).Msg("initial job index refresh failed")
		}
		indexService.Run(indexCtx, 15*time.Minute)
	}()

	// Handlers
	matchHandler := handler.NewMatchHandler(matchingService)
	resumeHandler := handler.NewResumeHandler(recordService)
	consentHandler := handler.NewConsentHandler(consentService)

	router := setupRouter(cfg, matchHandler, resumeHandler, consentHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server startup failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("embedding_backend", cfg.EmbeddingBackend).Msg("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	stopIndexer()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func setupRouter(
	cfg *config.Config,
	matchHandler *handler.MatchHandler,
	resumeHandler *handler.ResumeHandler,
	consentHandler *handler.ConsentHandler,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	api := router.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":    "healthy",
				"timestamp": time.Now().Unix(),
			})
		})

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		{
			protected.POST("/matching/jobs", matchHandler.FindMatches)
			protected.GET("/resumes/:id", resumeHandler.GetResume)
			protected.GET("/resumes/:id/download", resumeHandler.DownloadResume)

			consent := protected.Group("/consent")
			{
				consent.GET("/status", consentHandler.GetConsentStatus)
				consent.GET("/usage-history", consentHandler.GetUsageHistory)
			}
		}
	}

	return router
}
