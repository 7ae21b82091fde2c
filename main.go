package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dodam-health/glucoquest/internal/cache"
	"github.com/dodam-health/glucoquest/internal/config"
	"github.com/dodam-health/glucoquest/internal/database"
	"github.com/dodam-health/glucoquest/internal/domain"
	"github.com/dodam-health/glucoquest/internal/logger"
	"github.com/dodam-health/glucoquest/internal/repository"
	"github.com/dodam-health/glucoquest/internal/server"
	"github.com/dodam-health/glucoquest/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// Not an error: production deployments configure via environment.
		logger.Info(".env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		logger.Fatal("failed to initialize logger", "error", err)
	}
	logger.Info("starting glucose coaching service")

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	store := repository.NewStore(db)

	var profiles domain.ProfileCache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedis(cfg.Redis.Host, cfg.Redis.Port)
		if err != nil {
			logger.Fatal("failed to connect to Redis", "error", err)
		}
		defer redisCache.Close()
		profiles = redisCache
	} else {
		profiles = cache.NewMemory(0)
	}

	ctx := context.Background()

	var llm domain.LanguageModel
	var embedder domain.Embedder
	switch cfg.AIProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			logger.Fatal("OPENAI_API_KEY is required when AI_PROVIDER=openai")
		}
		llm = services.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.AITimeout)
	default:
		if cfg.GeminiAPIKey == "" {
			logger.Fatal("GEMINI_API_KEY is required when AI_PROVIDER=gemini")
		}
		gemini, err := services.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.AITimeout)
		if err != nil {
			logger.Fatal("failed to create Gemini client", "error", err)
		}
		defer gemini.Close()
		llm = gemini
		embedder = gemini
	}

	var retriever domain.KnowledgeRetriever
	if cfg.RAGEnabled && embedder != nil {
		knowledge := repository.NewKnowledgeRepo(db)
		if err := services.SeedKnowledgeBase(ctx, embedder, knowledge); err != nil {
			logger.Warn("knowledge base seeding failed, retrieval continues unseeded", "error", err)
		}
		retriever = services.NewEmbeddingRetriever(embedder, knowledge)
	}

	rag := services.NewRAGService(store, retriever, cfg.RAGEnabled)
	questService := services.NewQuestService(store, llm, rag)
	analysisService := services.NewAnalysisService(store, llm, rag)

	srv := server.New(cfg.Server.Port, questService, analysisService, nil, profiles)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Fatal("http server stopped", "error", err)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}
}
