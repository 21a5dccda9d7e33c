package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/cv-engine/internal/config"
	"alfredoptarigan/cv-engine/internal/extraction"
	"alfredoptarigan/cv-engine/internal/handlers"
	"alfredoptarigan/cv-engine/internal/llm"
	"alfredoptarigan/cv-engine/internal/middleware"
	"alfredoptarigan/cv-engine/internal/repositories"
	"alfredoptarigan/cv-engine/internal/services"
	"alfredoptarigan/cv-engine/internal/skills"
)

func main() {
	cfg := config.Load()

	zl, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zl.Sync()
	sugar := zl.Sugar()
	sugar.Infow("config loaded", "env", cfg.Server.Env, "llm_provider", cfg.LLM.Provider, "model", cfg.LLM.Model)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Repositories
	var (
		uploadRepo repositories.UploadRepository
		evalRepo   repositories.EvaluationRepository
	)
	if cfg.Database.Enabled {
		db, err := config.InitDatabase(cfg, zl)
		if err != nil {
			sugar.Fatalf("failed to initialize database: %v", err)
		}
		uploadRepo = repositories.NewUploadRepository(db)
		evalRepo = repositories.NewEvaluationRepository(db)
	} else {
		uploadRepo = repositories.NewMemoryUploadRepository()
		evalRepo = repositories.NewMemoryEvaluationRepository()
		sugar.Warn("DB_ENABLED is false, uploads and jobs are kept in memory")
	}

	// Storage
	uploadStorage := services.NewStorageService(cfg.Storage.UploadPath)
	tempStorage := services.NewStorageService(cfg.Storage.TempUploadPath)
	for _, s := range []services.StorageService{uploadStorage, tempStorage} {
		if err := s.EnsureUploadDir(); err != nil {
			sugar.Fatalf("failed to prepare storage: %v", err)
		}
	}

	// Pipeline
	backend, err := newBackend(ctx, cfg.LLM)
	if err != nil {
		sugar.Fatalf("failed to initialize LLM backend: %v", err)
	}
	evaluator := llm.NewEvaluator(backend, llm.Options{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		TopP:        cfg.LLM.TopP,
	}, zl)

	skillDB, err := skills.Default()
	if err != nil {
		sugar.Fatalf("failed to load skill database: %v", err)
	}

	factory := extraction.NewExtractorFactory(zl)
	validator := services.NewFileValidator(cfg.Storage.MaxFileSizeMB, cfg.Storage.AllowedFileTypes, factory)
	cvService := services.NewCVEvaluationService(
		factory,
		extraction.NewTextCleaner(),
		skills.NewExtractor(skillDB, zl),
		evaluator,
		zl,
	)
	uploadService := services.NewUploadService(uploadRepo, uploadStorage, validator, zl)

	// Worker
	worker := services.NewWorker(
		evalRepo,
		services.NewJobProcessor(evalRepo, uploadRepo, cvService, zl),
		services.WorkerOptions{
			Concurrency:  cfg.Worker.Concurrency,
			QueueSize:    cfg.Worker.QueueSize,
			PollInterval: cfg.Worker.PollInterval,
		},
		zl,
	)
	worker.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.Server.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.LLM.Timeout + 30*time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSizeBytes()) + 1024*1024,
		ErrorHandler: handlers.ErrorHandler(zl),
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins(),
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.RateLimiter(cfg.RateLimit.Max, cfg.RateLimit.Window))

	handlers.RegisterRoutes(app, cfg.Server.APIPrefix, handlers.Handlers{
		Health:     handlers.NewHealthHandler(cfg.Server),
		Upload:     handlers.NewUploadHandler(uploadService),
		Evaluation: handlers.NewEvaluationHandler(cvService, validator, tempStorage, zl),
		Jobs:       handlers.NewJobHandler(uploadRepo, evalRepo, worker),
		Result:     handlers.NewResultHandler(evalRepo),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		sugar.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			sugar.Errorf("server forced to shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	sugar.Infow("server starting", "addr", addr, "api_prefix", cfg.Server.APIPrefix)

	if err := app.Listen(addr); err != nil {
		sugar.Fatalf("failed to start server: %v", err)
	}

	cancel()
	worker.Stop()
	sugar.Info("server stopped")
}

func newBackend(ctx context.Context, cfg config.LLMConfig) (llm.Backend, error) {
	switch cfg.Provider {
	case "ollama":
		return llm.NewOllamaBackend(cfg.OllamaURL, cfg.Timeout), nil
	case "gemini":
		return llm.NewGeminiBackend(ctx, cfg.GeminiAPIKey)
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.Provider)
	}
}
