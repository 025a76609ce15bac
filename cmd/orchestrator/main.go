package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/finadvisor/orchestrator/common/logger"
	"github.com/finadvisor/orchestrator/config"
	"github.com/finadvisor/orchestrator/embedding"
	"github.com/finadvisor/orchestrator/intent"
	"github.com/finadvisor/orchestrator/llm"
	"github.com/finadvisor/orchestrator/mcpserver"
	"github.com/finadvisor/orchestrator/pipeline"
	"github.com/finadvisor/orchestrator/retriever"
	"github.com/finadvisor/orchestrator/router"
	"github.com/finadvisor/orchestrator/server"
	"github.com/finadvisor/orchestrator/vectordb"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	mcpMode := flag.Bool("mcp", false, "serve MCP over stdio instead of HTTP")
	flag.Parse()

	if err := logger.Init("info", false); err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load configuration failed: %v", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.JSON); err != nil {
		logger.Fatalf("initialize logger failed: %v", err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid configuration:\n%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		logger.Fatalf("create llm provider failed: %v", err)
	}
	embedder, err := embedding.NewProvider(cfg.Embedding)
	if err != nil {
		logger.Fatalf("create embedding provider failed: %v", err)
	}
	store, err := vectordb.NewProvider(ctx, cfg.VectorDB, cfg.Embedding.Dimensions)
	if err != nil {
		logger.Fatalf("create vector store failed: %v", err)
	}
	defer store.Close()

	ret := &retriever.VectorRetriever{
		Embed:     embedder,
		Store:     store,
		TopK:      cfg.Pipeline.TopK,
		Threshold: cfg.Pipeline.Threshold,
	}
	pipe := pipeline.New(cfg.Pipeline, provider, ret)
	classifier := intent.NewClassifier(cfg.Intent, provider)
	orch := router.New(classifier, pipe, cfg.Routes, cfg.HTTP)

	if *mcpMode {
		logger.Infof("serving MCP over stdio")
		if err := mcpserver.ServeStdio(orch); err != nil {
			logger.Fatalf("mcp server failed: %v", err)
		}
		return
	}

	srv := server.New(cfg.Server.Addr, orch)
	if err := srv.Run(ctx); err != nil {
		logger.Fatalf("http server failed: %v", err)
	}
	logger.Infof("shutdown complete")
}
