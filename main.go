package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/tliang07/askflow/config"
	"github.com/tliang07/askflow/internal/adapter/llm"
	"github.com/tliang07/askflow/internal/agent"
	"github.com/tliang07/askflow/internal/ingest"
	"github.com/tliang07/askflow/internal/orchestrator"
	"github.com/tliang07/askflow/internal/service"
	"github.com/tliang07/askflow/internal/store"
	"github.com/tliang07/askflow/internal/tools"
	transport "github.com/tliang07/askflow/internal/transport/http"
	"github.com/tliang07/askflow/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting askflow...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Ollama: %s (%s)", cfg.OllamaBaseURL, cfg.OllamaModel)
	log.Printf("Max hops: %d", cfg.MaxHops)

	ctx := context.Background()

	// Initialize store (selected once at startup)
	var db store.Store
	var storageKind string
	if cfg.MongoURI != "" {
		mongoStore, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatalf("Failed to initialize mongo store: %v", err)
		}
		db = mongoStore
		storageKind = "mongo"
	} else {
		if err := os.MkdirAll(cfg.StorageDir, 0o755); err != nil {
			log.Fatalf("Failed to create storage dir: %v", err)
		}
		sqliteStore, err := store.NewSQLiteStore(filepath.Join(cfg.StorageDir, "askflow.db"))
		if err != nil {
			log.Fatalf("Failed to initialize sqlite store: %v", err)
		}
		db = sqliteStore
		storageKind = "sqlite"
	}
	defer db.Close()
	log.Printf("Storage: %s", storageKind)

	// Initialize LLM client
	llmClient := llm.NewClient(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.OllamaTimeout)

	// Initialize safety policy engine
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize agents and orchestrator
	agents := []agent.Agent{
		agent.NewIntentAgent(llmClient),
		agent.NewRetrievalAgent(db, cfg.TopK),
		agent.NewToolAgent(llmClient, tools.DefaultRegistry),
		agent.NewFinalBuilderAgent(llmClient),
		agent.NewSafetyAgent(policyEngine),
	}
	orch := orchestrator.New(db, agents, cfg.MaxHops)

	// Initialize ingestion and service
	ingestor := ingest.New(db, llmClient, cfg)
	svc := service.New(db, orch, ingestor, cfg, storageKind)

	// Initialize HTTP server
	h := transport.NewHandler(svc, cfg.StorageDir, cfg.MaxUploadBytes)
	server := transport.NewServer(h)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down askflow...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("askflow stopped")
}
