package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Pavantext/NutriMood/api"
	"github.com/Pavantext/NutriMood/catalog"
	"github.com/Pavantext/NutriMood/config"
	"github.com/Pavantext/NutriMood/convo"
	"github.com/Pavantext/NutriMood/internal/adapter/embedding"
	"github.com/Pavantext/NutriMood/internal/adapter/llm"
	"github.com/Pavantext/NutriMood/internal/adapter/vectorindex"
	"github.com/Pavantext/NutriMood/internal/service"
	"github.com/Pavantext/NutriMood/retrieval"
	"github.com/Pavantext/NutriMood/store"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	log.Infof("Starting NutriMood recommender...")
	log.Infof("HTTP Port: %d", cfg.HTTPPort)
	log.Infof("Store backend: %s", cfg.StoreBackend)
	log.Infof("LLM provider: %s (%s)", cfg.LLMProvider, cfg.LLMModel)
	log.Infof("Index backend: %s", cfg.IndexBackend)

	// Session state store
	sessionStore, err := newSessionStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}
	defer sessionStore.Close()

	// External service clients
	llmClient, err := llm.NewFromProvider(cfg.LLMProvider, cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMTimeout)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}
	embedder := newEmbedder(cfg)
	index, err := newIndex(cfg, embedder, log)
	if err != nil {
		log.Fatalf("Failed to initialize vector index: %v", err)
	}

	// Pipeline
	retriever := retrieval.NewClient(embedder, index, log)
	var analyzer convo.Analyzer = convo.HeuristicAnalyzer{}
	if cfg.IntentMode == "llm" {
		analyzer = convo.NewLLMAnalyzer(llmClient, cfg.LLMModel, log)
	}
	svc := service.New(sessionStore, retriever, analyzer, llmClient, cfg, log)

	// HTTP server
	h := api.NewHandler(svc)
	server := echo.New()
	server.HideBanner = true
	server.Use(middleware.Logger())
	server.Use(middleware.Recover())
	server.Use(middleware.CORS())
	h.RegisterRoutes(server)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Infof("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down recommender...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Failed to shutdown server gracefully: %v", err)
	}

	log.Info("Recommender stopped")
}

func newSessionStore(cfg *config.Config) (store.SessionStore, error) {
	switch cfg.StoreBackend {
	case "sqlite":
		return store.NewSQLiteStore(cfg.DatabaseURL, cfg.HistoryWindow)
	default:
		return store.NewMemoryStore(cfg.HistoryWindow), nil
	}
}

func newEmbedder(cfg *config.Config) embedding.Embedder {
	if cfg.EmbedProvider == "openai" {
		return embedding.NewClient(cfg.EmbedBaseURL, cfg.EmbedAPIKey, cfg.EmbedModel, cfg.EmbedTimeout)
	}
	return embedding.NewMockEmbedder()
}

func newIndex(cfg *config.Config, embedder embedding.Embedder, log *logrus.Logger) (vectorindex.Index, error) {
	if cfg.IndexBackend == "qdrant" {
		return vectorindex.NewQdrantIndex(vectorindex.QdrantConfig{
			URL:        cfg.QdrantURL,
			APIKey:     cfg.QdrantAPIKey,
			Collection: cfg.QdrantCollection,
			Timeout:    cfg.QdrantTimeout,
		}), nil
	}

	// The in-memory index starts empty; seed it from the catalog file.
	index := vectorindex.NewMemoryIndex()
	records, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Warnf("Catalog not loaded (%v); in-memory index starts empty", err)
		return index, nil
	}
	if err := catalog.Seed(context.Background(), index, embedder, records); err != nil {
		return nil, fmt.Errorf("failed to seed index: %w", err)
	}
	log.Infof("Seeded in-memory index with %d catalog items", len(records))
	return index, nil
}
