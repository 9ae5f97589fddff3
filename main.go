package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/xiaot623/agentflow/internal/adapter/llm"
	"github.com/xiaot623/agentflow/internal/config"
	"github.com/xiaot623/agentflow/internal/domain"
	"github.com/xiaot623/agentflow/internal/pipeline"
	"github.com/xiaot623/agentflow/internal/policy"
	"github.com/xiaot623/agentflow/internal/repository"
	"github.com/xiaot623/agentflow/internal/runs"
	"github.com/xiaot623/agentflow/internal/service"
	"github.com/xiaot623/agentflow/internal/tools"
	handler "github.com/xiaot623/agentflow/internal/transport/http"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.SetLevel(parseLogLevel(cfg.LogLevel))

	log.Infof("Starting agentflow...")
	log.Infof("HTTP Port: %d", cfg.HTTPPort)
	log.Infof("Database: %s", cfg.DatabaseURL)
	log.Infof("LLM: %s (%s)", cfg.LLMModel, cfg.LLMBaseURL)

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := service.MustNewMetrics(reg)

	// Initialize LLM client
	llmClient := llm.NewLLMClient(cfg.LLMMode, cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMTimeout, llm.Options{
		Model:       cfg.LLMModel,
		Temperature: &cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
	})

	// Initialize policy engine
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Tools
	toolRegistry := tools.NewRegistry(policyEngine, tools.WithCallObserver(metrics.ToolCalled))
	tools.RegisterBuiltins(toolRegistry, tools.NewWebSearch(tools.WebSearchConfig{
		URL:        cfg.SearchURL,
		MaxResults: cfg.SearchMaxResults,
		Timeout:    cfg.SearchTimeout,
		CacheSize:  cfg.SearchCacheSize,
		CacheTTL:   cfg.SearchCacheTTL,
	}))

	// Pipeline
	executor := pipeline.NewExecutor(
		pipeline.DefaultStages(llmClient, toolRegistry.Tool(domain.ToolWebSearch)),
		pipeline.WithMaxSteps(cfg.MaxSteps),
		pipeline.WithObserver(metrics),
	)

	// Initialize service
	svc := service.New(db, runs.NewRegistry(), executor, metrics, cfg)

	server := handler.NewServer(svc, cfg.StreamHeartbeat, reg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Infof("Shutting down agentflow...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warnf("Failed to shutdown server gracefully: %v", err)
		}
		if err := svc.Shutdown(shutdownCtx); err != nil {
			log.Warnf("Runs still in flight at shutdown: %v", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	log.Infof("agentflow stopped")
}

func parseLogLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
