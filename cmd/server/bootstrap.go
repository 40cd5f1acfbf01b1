package main

import (
	"fmt"

	"github.com/huangang/feedbacklens/internal/config"
	"github.com/huangang/feedbacklens/internal/middleware"
	"github.com/huangang/feedbacklens/internal/models"
	"github.com/huangang/feedbacklens/internal/services"
	"github.com/huangang/feedbacklens/pkg/logger"
	"gorm.io/gorm"
)

// appServices holds all initialized services needed by the application.
type appServices struct {
	cfg            *config.Config
	db             *gorm.DB
	llm            services.TextGenerator
	reviewService  *services.ReviewService
	usageService   *services.AIUsageService
	taskQueue      services.TaskQueue
	worker         *services.Worker
	cleanupService *services.UsageCleanupService
	reviewLimiter  *middleware.RateLimiter
}

// bootstrap initializes all application dependencies: database, LLM client,
// alert queue, schedulers.
func bootstrap(cfg *config.Config) (*appServices, error) {
	if err := models.InitDB(&cfg.Database, cfg.Server.Mode); err != nil {
		return nil, err
	}
	if err := models.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	db := models.GetDB()

	llm, err := services.NewLLMClient(&cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("configure LLM client: %w", err)
	}
	if cfg.LLM.APIKey == "" && cfg.LLM.Provider != "ollama" {
		logger.Warn().Str("provider", llm.Provider()).Msg("LLM API key is not set, enrichment will use fallback content")
	}
	logger.Info().Str("provider", llm.Provider()).Str("model", llm.Model()).Msg("LLM client ready")

	usageService := services.NewAIUsageService(db)
	enrichment := services.NewEnrichmentService(llm, cfg.LLM.Timeout)

	// Redis when reachable, in-process otherwise
	taskQueue := services.NewTaskQueue(&cfg.Redis)
	alertService := services.NewAlertService(&cfg.Alerts, taskQueue)

	var worker *services.Worker
	if taskQueue.IsAsync() {
		worker = services.NewWorker(&cfg.Redis)
		worker.SetProcessor(alertService.Process)
		if err := worker.Start(); err != nil {
			return nil, fmt.Errorf("start alert worker: %w", err)
		}
	}

	reviewService := services.NewReviewService(db, enrichment, usageService, alertService)

	cleanupService := services.NewUsageCleanupService(usageService, &cfg.Usage)
	if err := cleanupService.StartScheduler(); err != nil {
		return nil, fmt.Errorf("start usage cleanup: %w", err)
	}

	return &appServices{
		cfg:            cfg,
		db:             db,
		llm:            llm,
		reviewService:  reviewService,
		usageService:   usageService,
		taskQueue:      taskQueue,
		worker:         worker,
		cleanupService: cleanupService,
		reviewLimiter:  middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
	}, nil
}

// shutdown gracefully stops background services.
func (s *appServices) shutdown() {
	s.cleanupService.StopScheduler()
	if s.worker != nil {
		s.worker.Stop()
	}
	if err := s.taskQueue.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close task queue")
	}
	s.reviewLimiter.Close()

	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info().Msg("Background services stopped")
}
